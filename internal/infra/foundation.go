package infra

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/weforyou/ledger/internal/domain"
)

//go:embed foundation.toml
var defaultFoundationProfile string

// FoundationProfile holds the organisation identity printed on receipts and
// used as the initial site settings.
type FoundationProfile struct {
	Organization struct {
		Name               string `toml:"name"`
		Phone              string `toml:"phone"`
		Email              string `toml:"email"`
		Address            string `toml:"address"`
		AboutUs            string `toml:"about_us"`
		PAN                string `toml:"pan"`
		RegistrationNumber string `toml:"registration_number"`
		Registration80G    string `toml:"registration_80g"`
	} `toml:"organization"`
	Receipts struct {
		Prefix    string `toml:"prefix"`
		Signatory string `toml:"signatory"`
		Footer    string `toml:"footer"`
	} `toml:"receipts"`
}

// LoadFoundationProfile reads the profile at path layered over the embedded
// defaults. An empty path returns the defaults.
func LoadFoundationProfile(path string) (*FoundationProfile, error) {
	var p FoundationProfile
	if _, err := toml.Decode(defaultFoundationProfile, &p); err != nil {
		return nil, fmt.Errorf("foundation profile: decode defaults: %w", err)
	}
	if path = strings.TrimSpace(path); path != "" {
		md, err := toml.DecodeFile(path, &p)
		if err != nil {
			return nil, fmt.Errorf("foundation profile: decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("foundation profile: unknown keys %v", undecoded)
		}
	}
	if p.Receipts.Prefix == "" {
		return nil, fmt.Errorf("foundation profile: receipts.prefix is required")
	}
	return &p, nil
}

// DefaultSettings converts the profile into the initial site settings.
func (p *FoundationProfile) DefaultSettings() domain.SiteSettings {
	o := p.Organization
	return domain.SiteSettings{
		OrgName:            o.Name,
		Phone:              o.Phone,
		Email:              o.Email,
		Address:            o.Address,
		AboutUs:            o.AboutUs,
		PAN:                o.PAN,
		RegistrationNumber: o.RegistrationNumber,
		Registration80G:    o.Registration80G,
	}
}
