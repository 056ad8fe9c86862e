package domain

import (
	"fmt"
	"time"
)

// India Standard Time has no DST; a fixed zone avoids depending on tzdata.
var indiaTime = time.FixedZone("IST", 5*60*60+30*60)

// Receipt is the immutable donation receipt snapshot.
type Receipt struct {
	ID            string    `json:"id"`
	DonationID    string    `json:"donation_id"`
	Number        string    `json:"receipt_number"`
	FinancialYear string    `json:"fy"`
	Section80G    bool      `json:"section_80g"`
	DonorName     string    `json:"donor_name"`
	PAN           string    `json:"pan,omitempty"`
	Address       string    `json:"address,omitempty"`
	Amount        Money     `json:"amount"`
	Currency      string    `json:"currency"`
	CampaignTitle string    `json:"campaign_title,omitempty"`
	PaymentRef    string    `json:"payment_ref,omitempty"`
	StorageKey    string    `json:"storage_key,omitempty"`
	IssuedAt      time.Time `json:"issued_at"`
}

// FinancialYear returns the Indian financial year (April to March) of t,
// formatted like "2024-25".
func FinancialYear(t time.Time) string {
	local := t.In(indiaTime)
	start := local.Year()
	if local.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// ReceiptNumber formats a receipt number from the issuing year and a
// sequence value, e.g. WFY202400001.
func ReceiptNumber(prefix string, issued time.Time, seq int64) string {
	return fmt.Sprintf("%s%d%05d", prefix, issued.In(indiaTime).Year(), seq)
}

// ReceiptStorageKey is the blob key of a rendered receipt.
func ReceiptStorageKey(r Receipt) string {
	return fmt.Sprintf("receipts/%s/%s-%s.pdf", r.FinancialYear, r.Number, r.FinancialYear)
}
