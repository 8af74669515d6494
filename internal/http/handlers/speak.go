package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"voicebot/internal/domain"
	"voicebot/internal/middleware"
)

type speakRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Speak runs the full admission flow: flood control, balance check, flood
// stamp, queue submission, await, ledger consumption. Consumption is recorded
// only after the synthesis succeeded, so failed jobs are never charged.
func (a *App) Speak(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}
	if err := a.Voices.ValidateText(req.Text); err != nil {
		a.error(w, http.StatusBadRequest, "text_too_long", "text exceeds the configured maximum length")
		return
	}

	lang := middleware.LanguageFromContext(r.Context())
	voice, err := a.Voices.Resolve(lang, req.Voice)
	if err != nil {
		a.error(w, http.StatusBadRequest, "unknown_voice", "requested voice is not available")
		return
	}

	ctx := r.Context()

	allowed, err := a.Ledger.CanRequest(ctx, userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "ledger unavailable")
		return
	}
	if !allowed {
		wait, err := a.Ledger.SecondsToWait(ctx, userID)
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "ledger unavailable")
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(wait))
		a.json(w, http.StatusTooManyRequests, map[string]any{
			"error":           "rate_limited",
			"seconds_to_wait": wait,
		})
		return
	}

	allowed, err = a.Ledger.CanSpeak(ctx, userID, 1)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "ledger unavailable")
		return
	}
	if !allowed {
		limit, err := a.Ledger.GetLimit(ctx, userID)
		if err == nil && limit.Frozen {
			a.error(w, http.StatusForbidden, "account_frozen", "account is frozen")
			return
		}
		a.json(w, http.StatusForbidden, map[string]any{
			"error": "quota_exceeded",
			"left":  0,
		})
		return
	}

	// Stamp on admission, before synthesis starts, so a slow job cannot be
	// used to slip past the flood interval.
	if err := a.Ledger.SetLastRequest(ctx, userID); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "ledger unavailable")
		return
	}

	handle, err := a.Queue.Submit(ctx, userID, func(jobCtx context.Context) ([]byte, error) {
		return a.Synth.Synthesize(jobCtx, req.Text, voice)
	}, a.Notify)
	if err != nil {
		if errors.Is(err, domain.ErrQueueClosed) {
			a.error(w, http.StatusServiceUnavailable, "shutting_down", "service is shutting down")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}

	audio, err := handle.Await(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Client went away; the job itself still settles in the background.
			return
		}
		if errors.Is(err, domain.ErrQueueClosed) {
			a.error(w, http.StatusServiceUnavailable, "shutting_down", "service is shutting down")
			return
		}
		a.error(w, http.StatusBadGateway, "synthesis_failed", "speech synthesis failed")
		return
	}

	if err := a.Ledger.AddUsed(ctx, userID, 1); err != nil {
		// Never assume optimistic success when the ledger cannot record
		// consumption.
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("speak: ledger consumption failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to record usage")
		return
	}

	left, err := a.Ledger.GetLeft(ctx, userID)
	if err == nil {
		w.Header().Set("X-Quota-Left", strconv.Itoa(left))
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
