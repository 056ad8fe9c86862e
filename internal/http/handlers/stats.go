package handlers

import (
	"net/http"

	"github.com/weforyou/ledger/internal/domain"
)

// StatsSummary serves landing-page totals. When the store is unavailable it
// answers with the last good snapshot, or zeros, marked stale.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Reports.PublicStats(r.Context())
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	if err != nil {
		a.Logger.Warn().Err(err).Msg("public stats unavailable, serving last snapshot")
		snapshot := domain.PublicStats{}
		if a.lastStats != nil {
			snapshot = *a.lastStats
		}
		a.json(w, http.StatusOK, map[string]any{"stats": snapshot, "stale": true})
		return
	}
	a.lastStats = stats
	a.json(w, http.StatusOK, map[string]any{"stats": stats, "stale": false})
}
