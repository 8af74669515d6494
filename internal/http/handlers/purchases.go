package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"voicebot/internal/domain"
)

type purchaseConfirmRequest struct {
	UserID    string `json:"user_id"`
	Amount    int    `json:"amount"`
	PaymentID string `json:"payment_id"`
}

// PurchasesConfirm credits purchased allowance after the payment provider
// confirmed settlement. The payment id makes provider callback replays
// harmless: the first call credits, every replay is acknowledged without
// crediting again.
func (a *App) PurchasesConfirm(w http.ResponseWriter, r *http.Request) {
	var req purchaseConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.PaymentID = strings.TrimSpace(req.PaymentID)
	if req.UserID == "" || req.PaymentID == "" || req.Amount <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id, payment_id and a positive amount are required")
		return
	}

	err := a.Ledger.AddPurchased(r.Context(), req.UserID, req.Amount, req.PaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateOperation) {
			a.json(w, http.StatusOK, map[string]any{"status": "already_credited"})
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to credit purchase")
		return
	}

	left, err := a.Ledger.GetLeft(r.Context(), req.UserID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "ledger unavailable")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": "credited", "left": left})
}
