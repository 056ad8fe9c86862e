package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/volunteer"
)

func (a *App) MembersCreate(w http.ResponseWriter, r *http.Request) {
	var in volunteer.MemberInput
	if !a.decode(w, r, &in) {
		return
	}
	m, err := a.Volunteers.CreateMember(r.Context(), a.currentUserID(r), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, m)
}

func (a *App) MembersList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Volunteers.ListMembers(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Member{}
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) MembersUpdate(w http.ResponseWriter, r *http.Request) {
	var in volunteer.MemberInput
	if !a.decode(w, r, &in) {
		return
	}
	p := a.principal(r)
	m, err := a.Volunteers.UpdateMember(r.Context(), p.UserID, chi.URLParam(r, "id"), in, isAdmin(p))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, m)
}

func (a *App) MembersDonate(w http.ResponseWriter, r *http.Request) {
	var in volunteer.OnBehalfInput
	if !a.decode(w, r, &in) {
		return
	}
	checkout, err := a.Volunteers.DonateOnBehalf(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, checkout)
}
