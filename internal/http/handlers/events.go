package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/events"
)

// EventsPublic lists events open to members. Without ?status it shows LIVE
// events only.
func (a *App) EventsPublic(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(domain.EventLive)
	}
	if strings.EqualFold(status, string(domain.EventDraft)) || strings.EqualFold(status, string(domain.EventArchived)) {
		a.error(w, http.StatusBadRequest, "bad_request", "status not available")
		return
	}
	a.listEvents(w, r, status)
}

func (a *App) AdminEventsList(w http.ResponseWriter, r *http.Request) {
	a.listEvents(w, r, r.URL.Query().Get("status"))
}

func (a *App) listEvents(w http.ResponseWriter, r *http.Request, status string) {
	items, err := a.Events.List(r.Context(), status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Event{}
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) EventsRegister(w http.ResponseWriter, r *http.Request) {
	reg, err := a.Events.Register(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, reg)
}

func (a *App) AdminEventsCreate(w http.ResponseWriter, r *http.Request) {
	var p events.Patch
	if !a.decode(w, r, &p) {
		return
	}
	e, err := a.Events.Create(r.Context(), a.currentUserID(r), p)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, e)
}

func (a *App) AdminEventsUpdate(w http.ResponseWriter, r *http.Request) {
	var p events.Patch
	if !a.decode(w, r, &p) {
		return
	}
	e, err := a.Events.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, e)
}

// AdminEventsDelete archives the event; registrations are kept.
func (a *App) AdminEventsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Events.Archive(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
