package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DonationStatus enumerates the settlement states of a donation.
type DonationStatus string

const (
	DonationPending  DonationStatus = "pending"
	DonationSuccess  DonationStatus = "success"
	DonationFailed   DonationStatus = "failed"
	DonationRefunded DonationStatus = "refunded"
)

// DonationType records why a donation was created.
type DonationType string

const (
	DonationCampaign  DonationType = "CAMPAIGN"
	DonationGeneral   DonationType = "GENERAL"
	DonationEventFee  DonationType = "EVENT_FEE"
	DonationOnBehalf  DonationType = "ON_BEHALF"
	DonationRecurring DonationType = "RECURRING"
)

// CurrencyINR is the only settlement currency supported by the gateway account.
const CurrencyINR = "INR"

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// ValidPAN reports whether pan has the Indian permanent account number shape.
func ValidPAN(pan string) bool {
	return panPattern.MatchString(pan)
}

// Donation is a single payment intent and its settlement state.
type Donation struct {
	ID             string         `json:"id"`
	CampaignID     *string        `json:"campaign_id"`
	CampaignTitle  string         `json:"campaign_title,omitempty"`
	UserID         string         `json:"user_id"`
	Amount         Money          `json:"amount"`
	Currency       string         `json:"currency"`
	Status         DonationStatus `json:"status"`
	Type           DonationType   `json:"type"`
	Method         string         `json:"method,omitempty"`
	IsAnonymous    bool           `json:"is_anonymous"`
	Want80G        bool           `json:"want_80g"`
	PAN            string         `json:"pan,omitempty"`
	LegalName      string         `json:"legal_name,omitempty"`
	Address        string         `json:"address,omitempty"`
	OrderID        string         `json:"order_id"`
	PaymentRef     string         `json:"payment_ref,omitempty"`
	RefundedAmount Money          `json:"refunded_amount"`
	RefundRef      string         `json:"refund_ref,omitempty"`
	PledgeID       *string        `json:"pledge_id,omitempty"`
	EventID        *string        `json:"event_id,omitempty"`
	MemberID       *string        `json:"donor_member_id,omitempty"`
	DonorName      string         `json:"donor_name,omitempty"`
	Country        string         `json:"country,omitempty"`
	ReceiptNumber  string         `json:"receipt_number,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// DonationIntent is the validated input for opening a donation.
type DonationIntent struct {
	CampaignID  *string
	UserID      string
	Amount      Money
	Currency    string
	Type        DonationType
	Method      string
	IsAnonymous bool
	Want80G     bool
	PAN         string
	LegalName   string
	Address     string
	PledgeID    *string
	EventID     *string
	MemberID    *string
	DonorName   string
	Country     string
}

// Normalize trims inputs, applies defaults and validates the intent before
// any gateway order is created.
func (in *DonationIntent) Normalize() error {
	if in.Amount <= 0 {
		return Invalid("amount", "amount must be greater than zero")
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = CurrencyINR
	}
	if in.Currency != CurrencyINR {
		return Invalid("currency", fmt.Sprintf("unsupported currency %q", in.Currency))
	}
	switch in.Method {
	case "", "upi", "card", "netbanking":
	default:
		return Invalid("method", "method must be upi, card or netbanking")
	}
	in.PAN = strings.ToUpper(strings.TrimSpace(in.PAN))
	in.LegalName = strings.TrimSpace(in.LegalName)
	in.Address = strings.TrimSpace(in.Address)
	if in.Want80G {
		if in.PAN == "" {
			return Invalid("pan", "PAN is required for an 80G receipt")
		}
		if !ValidPAN(in.PAN) {
			return Invalid("pan", "PAN must look like AAAAA9999A")
		}
		if in.LegalName == "" {
			return Invalid("legal_name", "legal name is required for an 80G receipt")
		}
	}
	if in.Type == "" {
		if in.CampaignID != nil {
			in.Type = DonationCampaign
		} else {
			in.Type = DonationGeneral
		}
	}
	return nil
}

// SettlementOutcome is the decision taken for a payment confirmation.
type SettlementOutcome int

const (
	// SettleApply moves a pending donation to success.
	SettleApply SettlementOutcome = iota + 1
	// SettleReplay acknowledges a confirmation that was already applied.
	SettleReplay
	// SettleReject moves a pending donation to failed.
	SettleReject
)

// DecideSettlement chooses what a payment confirmation does to d. verified
// reports whether the gateway signature checked out. A successful donation is
// never moved again by a confirmation; failed and refunded donations reject
// confirmations with ErrConflict.
func DecideSettlement(d Donation, orderID string, verified bool) (SettlementOutcome, error) {
	switch d.Status {
	case DonationSuccess:
		if orderID == d.OrderID {
			return SettleReplay, nil
		}
		return 0, fmt.Errorf("%w: order does not match donation", ErrPaymentVerification)
	case DonationFailed, DonationRefunded:
		return 0, fmt.Errorf("%w: donation is %s", ErrConflict, d.Status)
	case DonationPending:
		if orderID != d.OrderID || !verified {
			return SettleReject, nil
		}
		return SettleApply, nil
	default:
		return 0, fmt.Errorf("%w: unknown donation status %q", ErrConflict, d.Status)
	}
}

// DonorDisplayName is the name shown publicly for a settled donation.
func (d Donation) DonorDisplayName(userName string) string {
	if d.IsAnonymous {
		return "Anonymous"
	}
	if d.DonorName != "" {
		return d.DonorName
	}
	return userName
}

// PaymentAttempt records one gateway order opened for a donation.
type PaymentAttempt struct {
	ID         string
	DonationID string
	AttemptNo  int
	Status     string
	OrderID    string
	Payload    []byte
	CreatedAt  time.Time
}

const (
	AttemptInitiated = "initiated"
	AttemptSuccess   = "success"
	AttemptFailed    = "failed"
)
