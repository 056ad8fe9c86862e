package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/weforyou/ledger/internal/domain"
)

const recentDonorLimit = 5

type campaignRequest struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	GoalAmount     domain.Money          `json:"goal_amount"`
	AllowRecurring bool                  `json:"allow_recurring"`
	ImageURL       string                `json:"image_url"`
	Currency       string                `json:"currency"`
	Status         domain.CampaignStatus `json:"status"`
	EndDate        *time.Time            `json:"end_date"`
}

type campaignStatusRequest struct {
	Status domain.CampaignStatus `json:"status"`
}

type campaignDetail struct {
	domain.Campaign
	RecentDonors []domain.RecentDonor `json:"recent_donors"`
}

func (a *App) CampaignsList(w http.ResponseWriter, r *http.Request) {
	status := domain.CampaignStatus(strings.ToLower(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown campaign status")
		return
	}
	items, err := a.Campaigns.List(r.Context(), status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Campaign{}
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) CampaignsGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := a.Campaigns.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	donors, err := a.Campaigns.RecentDonors(r.Context(), id, recentDonorLimit)
	if err != nil {
		a.Logger.Warn().Err(err).Str("campaign_id", id).Msg("recent donors unavailable")
	}
	if donors == nil {
		donors = []domain.RecentDonor{}
	}
	a.json(w, http.StatusOK, campaignDetail{Campaign: *c, RecentDonors: donors})
}

func (a *App) CampaignsCreate(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !a.decode(w, r, &req) {
		return
	}
	c := domain.Campaign{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		GoalAmount:     req.GoalAmount,
		AllowRecurring: req.AllowRecurring,
		ImageURL:       req.ImageURL,
		Currency:       strings.ToUpper(strings.TrimSpace(req.Currency)),
		Status:         req.Status,
		EndDate:        req.EndDate,
		CreatedBy:      a.currentUserID(r),
	}
	if c.Currency == "" {
		c.Currency = domain.CurrencyINR
	}
	if c.Status == "" {
		c.Status = domain.CampaignActive
	}
	if err := c.Validate(); err != nil {
		a.fail(w, r, err)
		return
	}
	created, err := a.Campaigns.Create(r.Context(), c)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, created)
}

func (a *App) CampaignsUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req campaignStatusRequest
	if !a.decode(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		a.fail(w, r, domain.Invalid("status", "status must be active, paused or completed"))
		return
	}
	c, err := a.Campaigns.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, c)
}
