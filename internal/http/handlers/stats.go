package handlers

import "net/http"

// Stats aggregates the ledger audit log and the current queue occupancy.
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	totals, err := a.Ledger.Totals(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_users":     totals.TotalUsers,
		"total_synthesis": totals.TotalSynthesis,
		"total_purchased": totals.TotalPurchased,
		"total_denied":    totals.TotalDenied,
		"queue":           a.Queue.Stats(),
	})
}
