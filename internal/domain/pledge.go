package domain

import (
	"fmt"
	"time"
)

// PledgeStatus enumerates recurring pledge states. Cancelled is absorbing.
type PledgeStatus string

const (
	PledgeActive    PledgeStatus = "active"
	PledgePaused    PledgeStatus = "paused"
	PledgeCancelled PledgeStatus = "cancelled"
)

// PledgeAction is a donor-requested transition.
type PledgeAction string

const (
	PledgePause    PledgeAction = "pause"
	PledgeActivate PledgeAction = "activate"
	PledgeCancel   PledgeAction = "cancel"
)

// ParsePledgeAction validates an action name from a request.
func ParsePledgeAction(s string) (PledgeAction, error) {
	switch a := PledgeAction(s); a {
	case PledgePause, PledgeActivate, PledgeCancel:
		return a, nil
	}
	return "", Invalid("action", "action must be pause, activate or cancel")
}

// Frequency is the charge interval of a pledge.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// ParseFrequency defaults to monthly.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(s); f {
	case "":
		return FrequencyMonthly, nil
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return f, nil
	}
	return "", Invalid("frequency", "frequency must be monthly, quarterly or yearly")
}

// Next returns the charge date one interval after t.
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case FrequencyQuarterly:
		return t.AddDate(0, 3, 0)
	case FrequencyYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// Pledge is a recurring donation agreement.
type Pledge struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	CampaignID    string       `json:"campaign_id"`
	CampaignTitle string       `json:"campaign_title,omitempty"`
	Amount        Money        `json:"amount"`
	Currency      string       `json:"currency"`
	Frequency     Frequency    `json:"frequency"`
	Status        PledgeStatus `json:"status"`
	NextChargeAt  time.Time    `json:"next_charge_at"`
	Version       int          `json:"version"`
	LastChargeAt  *time.Time   `json:"last_charge_at,omitempty"`
	FailedCharges int          `json:"failed_charges"`
	LastFailureAt *time.Time   `json:"last_failure_at,omitempty"`
	LastFailure   string       `json:"last_failure,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NextStatus returns the status reached by applying action to s, or
// ErrConflict when s does not allow it.
func (s PledgeStatus) NextStatus(action PledgeAction) (PledgeStatus, error) {
	switch {
	case action == PledgePause && s == PledgeActive:
		return PledgePaused, nil
	case action == PledgeActivate && s == PledgePaused:
		return PledgeActive, nil
	case action == PledgeCancel && (s == PledgeActive || s == PledgePaused):
		return PledgeCancelled, nil
	}
	return "", fmt.Errorf("%w: cannot %s a %s pledge", ErrConflict, action, s)
}

// AdvanceAfterCharge moves the due date one interval past the charged date,
// skipping periods that elapsed while the scheduler was not running.
func (p Pledge) AdvanceAfterCharge(now time.Time) time.Time {
	next := p.Frequency.Next(p.NextChargeAt)
	for !next.After(now) {
		next = p.Frequency.Next(next)
	}
	return next
}
