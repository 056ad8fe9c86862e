package domain

import "time"

// SiteSettings is the foundation profile shown on the public site and printed
// on receipts.
type SiteSettings struct {
	OrgName            string    `json:"org_name"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email"`
	Address            string    `json:"address"`
	AboutUs            string    `json:"about_us"`
	PAN                string    `json:"pan"`
	RegistrationNumber string    `json:"registration_number"`
	Registration80G    string    `json:"registration_80g"`
	UpdatedAt          time.Time `json:"updated_at,omitempty"`
	UpdatedBy          string    `json:"updated_by,omitempty"`
}

// PublicStats is the landing-page summary.
type PublicStats struct {
	TotalRaised     Money `json:"total_raised"`
	TotalDonations  int64 `json:"total_donations"`
	ActiveCampaigns int64 `json:"active_campaigns"`
	UniqueDonors    int64 `json:"unique_donors"`
	BloodDonors     int64 `json:"blood_donors"`
	UpcomingEvents  int64 `json:"upcoming_events"`
	ActivePledges   int64 `json:"active_pledges"`
}

// ExportTable is a tabular admin export.
type ExportTable struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Export kinds served by the admin export endpoint.
var ExportKinds = []string{"users", "volunteers", "transactions", "campaigns", "blood-donors"}
