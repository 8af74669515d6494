package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type freezeRequest struct {
	Frozen bool `json:"frozen"`
}

// AdminFreeze toggles the administrative kill-switch for a user. The change
// either fully applies or fails visibly.
func (a *App) AdminFreeze(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id required")
		return
	}
	var req freezeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Ledger.SetFrozen(r.Context(), userID, req.Frozen); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to update frozen flag")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"user_id": userID, "frozen": req.Frozen})
}

type freeLimitRequest struct {
	FreeLimit int `json:"free_limit"`
}

// AdminSetFreeLimit overrides a user's recurring free allowance.
func (a *App) AdminSetFreeLimit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id required")
		return
	}
	var req freeLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.FreeLimit < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "free_limit must not be negative")
		return
	}
	if err := a.Ledger.SetFreeLimit(r.Context(), userID, req.FreeLimit); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to update free limit")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"user_id": userID, "free_limit": req.FreeLimit})
}
