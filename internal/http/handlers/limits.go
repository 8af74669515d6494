package handlers

import (
	"net/http"
	"strconv"
)

// Limits reports the caller's entitlement state. Reading the row applies the
// lazy free-window reset when it is due.
func (a *App) Limits(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	limit, err := a.Ledger.GetLimit(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "ledger unavailable")
		return
	}
	wait, err := a.Ledger.SecondsToWait(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "ledger unavailable")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"user_id":         limit.UserID,
		"used":            limit.Used,
		"purchased":       limit.Purchased,
		"free_limit":      limit.FreeLimit,
		"left":            limit.Left(),
		"frozen":          limit.Frozen,
		"seconds_to_wait": wait,
	})
}

// History returns the caller's newest audit records.
func (a *App) History(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	records, err := a.Ledger.History(r.Context(), userID, limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}

	items := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		items = append(items, map[string]any{
			"action":     rec.Action,
			"amount":     rec.Amount,
			"comment":    rec.Comment,
			"created_at": rec.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
