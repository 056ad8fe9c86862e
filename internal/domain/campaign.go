package domain

import "time"

// CampaignStatus enumerates fundraising campaign states.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
)

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignActive, CampaignPaused, CampaignCompleted:
		return true
	}
	return false
}

// Campaign is a fundraising target. CurrentAmount and DonorCount are only
// written by settlement and refund.
type Campaign struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	GoalAmount     Money          `json:"goal_amount"`
	CurrentAmount  Money          `json:"current_amount"`
	DonorCount     int            `json:"donor_count"`
	AllowRecurring bool           `json:"allow_recurring"`
	ImageURL       string         `json:"image_url,omitempty"`
	Currency       string         `json:"currency"`
	Status         CampaignStatus `json:"status"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	CreatedBy      string         `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Validate checks an admin-created campaign before it is stored.
func (c Campaign) Validate() error {
	if c.Title == "" {
		return Invalid("title", "title is required")
	}
	if c.GoalAmount <= 0 {
		return Invalid("goal_amount", "goal_amount must be greater than zero")
	}
	if c.Currency != CurrencyINR {
		return Invalid("currency", "only INR campaigns are supported")
	}
	if !c.Status.Valid() {
		return Invalid("status", "status must be active, paused or completed")
	}
	return nil
}

// RecentDonor is a public, non-anonymous supporter of a campaign.
type RecentDonor struct {
	Name      string    `json:"name"`
	Amount    Money     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// CampaignAudit compares stored aggregates with a full recompute.
type CampaignAudit struct {
	CampaignID     string `json:"campaign_id"`
	Title          string `json:"title"`
	StoredAmount   Money  `json:"stored_amount"`
	ComputedAmount Money  `json:"computed_amount"`
	StoredDonors   int    `json:"stored_donor_count"`
	ComputedDonors int    `json:"computed_donor_count"`
	Repaired       bool   `json:"repaired"`
}

// Consistent reports whether the stored aggregates match the recompute.
func (a CampaignAudit) Consistent() bool {
	return a.StoredAmount == a.ComputedAmount && a.StoredDonors == a.ComputedDonors
}

// CampaignAnalytics summarises settled donations for admins.
type CampaignAnalytics struct {
	CampaignID    string        `json:"campaign_id"`
	Title         string        `json:"title"`
	TotalAmount   Money         `json:"total_amount"`
	DonationCount int           `json:"donation_count"`
	AverageAmount Money         `json:"average_amount"`
	TopDonors     []RecentDonor `json:"top_donors"`
}
