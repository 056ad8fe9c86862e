package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/weforyou/ledger/internal/directory"
	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/middleware"
)

type bloodDonorRequest struct {
	FullName         string     `json:"full_name"`
	BloodGroup       string     `json:"blood_group"`
	Age              int        `json:"age"`
	Weight           int        `json:"weight"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	District         string     `json:"district"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	Availability     *bool      `json:"availability"`
	LastDonationDate *time.Time `json:"last_donation_date"`
	ConsentPublic    bool       `json:"consent_public"`
	MemberID         *string    `json:"member_id"`
}

type bloodDonorView struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	BloodGroup    string `json:"blood_group"`
	ConsentPublic bool   `json:"consent_public"`
	Hidden        bool   `json:"moderation_hidden"`
	PhoneMasked   string `json:"phone_masked"`
}

func viewDonor(d *domain.BloodDonor) bloodDonorView {
	return bloodDonorView{
		ID:            d.ID,
		FullName:      d.FullName,
		BloodGroup:    d.BloodGroup,
		ConsentPublic: d.ConsentPublic,
		Hidden:        d.ModerationHidden,
		PhoneMasked:   domain.MaskPhone(d.Phone),
	}
}

func (a *App) BloodDonorsSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := domain.DonorSearch{
		BloodGroup: q.Get("group"),
		State:      q.Get("state"),
		District:   q.Get("district"),
		Available:  true,
	}
	if v := q.Get("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			a.fail(w, r, domain.Invalid("available", "available must be true or false"))
			return
		}
		search.Available = b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			a.fail(w, r, domain.Invalid("limit", "limit must be a positive integer"))
			return
		}
		search.Limit = n
	}
	items, err := a.Directory.Search(r.Context(), search)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.DonorListing{}
	}
	a.json(w, http.StatusOK, items)
}

// BloodDonorsRegister accepts self sign-ups and, for volunteers, sign-ups
// of one of their members.
func (a *App) BloodDonorsRegister(w http.ResponseWriter, r *http.Request) {
	var req bloodDonorRequest
	if !a.decode(w, r, &req) {
		return
	}
	p := a.principal(r)
	selfRegistered := req.MemberID == nil || *req.MemberID == ""
	if !selfRegistered && !p.HasRole(string(domain.RoleVolunteer)) && !isAdmin(p) {
		a.error(w, http.StatusForbidden, "forbidden", "only volunteers can register members")
		return
	}
	d, err := a.Directory.Register(r.Context(), directory.RegisterInput{
		FullName:         req.FullName,
		BloodGroup:       req.BloodGroup,
		Age:              req.Age,
		Weight:           req.Weight,
		City:             req.City,
		State:            req.State,
		District:         req.District,
		Phone:            req.Phone,
		Email:            req.Email,
		Availability:     req.Availability,
		LastDonationDate: req.LastDonationDate,
		ConsentPublic:    req.ConsentPublic,
		MemberID:         req.MemberID,
	}, p.UserID, selfRegistered)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, viewDonor(d))
}

func (a *App) BloodDonorsReveal(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("captcha_token")
	if token == "" {
		token = r.Header.Get("X-Captcha-Token")
	}
	contact, err := a.Directory.Reveal(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"), token, middleware.ClientIP(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, contact)
}

type consentRequest struct {
	ConsentPublic bool `json:"consent_public"`
}

func (a *App) BloodDonorsConsent(w http.ResponseWriter, r *http.Request) {
	var req consentRequest
	if !a.decode(w, r, &req) {
		return
	}
	p := a.principal(r)
	d, err := a.Directory.SetConsent(r.Context(), chi.URLParam(r, "id"), req.ConsentPublic, p.UserID, isAdmin(p))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, viewDonor(d))
}

type hideRequest struct {
	Hidden bool   `json:"hidden"`
	Reason string `json:"reason"`
}

func (a *App) AdminBloodDonorHide(w http.ResponseWriter, r *http.Request) {
	var req hideRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Directory.Hide(r.Context(), chi.URLParam(r, "id"), req.Hidden, a.currentUserID(r), req.Reason); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
