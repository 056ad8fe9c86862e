package domain

import (
	"strings"
	"time"
)

// MaxRevealsPerDay caps successful contact reveals per requesting user per UTC day.
const MaxRevealsPerDay = 5

var bloodGroups = map[string]struct{}{
	"A+": {}, "A-": {}, "B+": {}, "B-": {}, "AB+": {}, "AB-": {}, "O+": {}, "O-": {},
}

// NormalizeBloodGroup upper-cases a group and rejects unknown values.
func NormalizeBloodGroup(g string) (string, error) {
	g = strings.ToUpper(strings.TrimSpace(g))
	if _, ok := bloodGroups[g]; !ok {
		return "", Invalid("blood_group", "unknown blood group")
	}
	return g, nil
}

// BloodDonor is the full directory record. It is never serialized to
// searching users; see DonorListing.
type BloodDonor struct {
	ID                 string
	UserID             string
	MemberID           *string
	FullName           string
	BloodGroup         string
	Age                int
	Weight             int
	City               string
	State              string
	District           string
	Phone              string
	Email              string
	Availability       bool
	LastDonationDate   *time.Time
	ConsentPublic      bool
	ConsentPublicAt    *time.Time
	ModerationHidden   bool
	ContactRevealCount int
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Discoverable reports whether searching users may see or reveal the donor.
func (d BloodDonor) Discoverable() bool {
	return d.ConsentPublic && !d.ModerationHidden
}

// DonorListing is the search-result shape. It has no unmasked contact fields.
type DonorListing struct {
	ID               string     `json:"id"`
	FullName         string     `json:"full_name"`
	BloodGroup       string     `json:"blood_group"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	District         string     `json:"district"`
	Availability     bool       `json:"availability"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
	PhoneMasked      string     `json:"phone_masked"`
}

// Listing projects a donor onto the public search shape.
func (d BloodDonor) Listing() DonorListing {
	return DonorListing{
		ID:               d.ID,
		FullName:         d.FullName,
		BloodGroup:       d.BloodGroup,
		City:             d.City,
		State:            d.State,
		District:         d.District,
		Availability:     d.Availability,
		LastDonationDate: d.LastDonationDate,
		PhoneMasked:      MaskPhone(d.Phone),
	}
}

// MaskPhone keeps the first three and last two digits.
func MaskPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 5 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:3] + "***" + phone[len(phone)-2:]
}

// DonorContact is returned only by a successful reveal.
type DonorContact struct {
	DonorID        string `json:"donor_id"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	Email          string `json:"email,omitempty"`
	RevealsToday   int    `json:"reveals_today"`
	RevealsAllowed int    `json:"reveals_allowed"`
}

// DonorSearch filters the public directory.
type DonorSearch struct {
	BloodGroup string
	State      string
	District   string
	Available  bool
	Limit      int
}

// RevealDay is the UTC calendar day a reveal is counted against.
func RevealDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
