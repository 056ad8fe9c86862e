package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/pledge"
)

type pledgeRequest struct {
	CampaignID string       `json:"campaign_id"`
	Amount     domain.Money `json:"amount"`
	Frequency  string       `json:"frequency"`
}

func (a *App) PledgesCreate(w http.ResponseWriter, r *http.Request) {
	var req pledgeRequest
	if !a.decode(w, r, &req) {
		return
	}
	p, err := a.Pledges.Create(r.Context(), pledge.CreateInput{
		UserID:     a.currentUserID(r),
		CampaignID: req.CampaignID,
		Amount:     req.Amount,
		Frequency:  req.Frequency,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, p)
}

func (a *App) PledgesMine(w http.ResponseWriter, r *http.Request) {
	items, err := a.Pledges.ListMine(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Pledge{}
	}
	a.json(w, http.StatusOK, items)
}

// PledgesAct applies ?action=pause|activate|cancel.
func (a *App) PledgesAct(w http.ResponseWriter, r *http.Request) {
	action, err := domain.ParsePledgeAction(r.URL.Query().Get("action"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.Pledges.Act(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r), action)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, p)
}
