package domain

import (
	"slices"
	"time"
)

// Role enumerates account roles.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleVolunteer Role = "volunteer"
	RoleDonor     Role = "donor"
)

// User represents an authenticated account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasRole reports whether the user carries role.
func (u User) HasRole(role Role) bool {
	return slices.Contains(u.Roles, role)
}

// RoleStrings converts roles for token claims and storage.
func RoleStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

// ParseRoles drops unknown role names.
func ParseRoles(in []string) []Role {
	out := make([]Role, 0, len(in))
	for _, s := range in {
		switch r := Role(s); r {
		case RoleAdmin, RoleVolunteer, RoleDonor:
			if !slices.Contains(out, r) {
				out = append(out, r)
			}
		}
	}
	return out
}

// Member is a donor record kept by a volunteer on someone's behalf.
type Member struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	BloodGroup    string    `json:"blood_group,omitempty"`
	PAN           string    `json:"pan,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	District      string    `json:"district,omitempty"`
	ConsentPublic bool      `json:"consent_public"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AuditEntry records consent and moderation changes.
type AuditEntry struct {
	Event     string
	SubjectID string
	ActorID   string
	Details   map[string]any
}
