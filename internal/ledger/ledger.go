// Package ledger implements the per-user entitlement ledger: free and
// purchased allowances, flood control, and the lazy weekly reset of the free
// window. All admission checks the front-end relies on live here.
package ledger

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"voicebot/internal/domain"
	"voicebot/internal/infra"
)

const lockStripes = 64

// Config tunes the ledger's time windows.
type Config struct {
	// FloodInterval is the minimum gap between admitted requests per user.
	FloodInterval time.Duration
	// ResetWindow is how long the free allowance lasts before `used` resets.
	ResetWindow time.Duration
}

// Ledger owns entitlement state transitions. Operations for the same user are
// serialized through striped locks; unrelated users never contend on the same
// stripe unless they hash together.
type Ledger struct {
	limits  domain.LimitRepository
	history domain.HistoryRepository
	flood   time.Duration
	window  time.Duration
	logger  infra.Logger

	now   func() time.Time
	locks [lockStripes]sync.Mutex
}

// New constructs a Ledger. Zero config fields fall back to the domain defaults.
func New(limits domain.LimitRepository, history domain.HistoryRepository, cfg Config, logger infra.Logger) *Ledger {
	if cfg.FloodInterval <= 0 {
		cfg.FloodInterval = domain.DefaultFloodInterval
	}
	if cfg.ResetWindow <= 0 {
		cfg.ResetWindow = domain.DefaultResetWindow
	}
	return &Ledger{
		limits:  limits,
		history: history,
		flood:   cfg.FloodInterval,
		window:  cfg.ResetWindow,
		logger:  logger,
		now:     time.Now,
	}
}

func (l *Ledger) lock(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &l.locks[h.Sum32()%lockStripes]
}

// GetLimit returns the user's current state, applying the lazy free-window
// reset first when it is due. The read-check-mutate sequence holds the user's
// stripe so concurrent readers cannot observe a half-applied reset.
func (l *Ledger) GetLimit(ctx context.Context, userID string) (*domain.UserLimit, error) {
	mu := l.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	return l.getLimitLocked(ctx, userID)
}

func (l *Ledger) getLimitLocked(ctx context.Context, userID string) (*domain.UserLimit, error) {
	limit, err := l.limits.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger: load limit: %w", err)
	}
	now := l.now()
	if !limit.ResetDue(now, l.window) {
		return limit, nil
	}
	reset, err := l.limits.ResetFreeWindow(ctx, userID, now.Add(-l.window))
	if err != nil {
		return nil, fmt.Errorf("ledger: reset free window: %w", err)
	}
	if reset {
		l.logger.Info().Str("user_id", userID).Msg("ledger: free window reset")
	}
	limit, err = l.limits.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger: reload limit: %w", err)
	}
	return limit, nil
}

// CanSpeak reports whether the user may consume `required` more jobs. A denial
// is recorded in the audit log but the check itself never consumes anything.
func (l *Ledger) CanSpeak(ctx context.Context, userID string, required int) (bool, error) {
	if required <= 0 {
		required = 1
	}
	limit, err := l.GetLimit(ctx, userID)
	if err != nil {
		return false, err
	}
	if limit.CanConsume(required) {
		return true, nil
	}
	comment := "insufficient balance"
	if limit.Frozen {
		comment = "account frozen"
	}
	l.appendHistory(ctx, userID, domain.HistoryActionLimitExceeded, required, comment)
	return false, nil
}

// GetLeft returns the remaining allowance, floored at zero.
func (l *Ledger) GetLeft(ctx context.Context, userID string) (int, error) {
	limit, err := l.GetLimit(ctx, userID)
	if err != nil {
		return 0, err
	}
	return limit.Left(), nil
}

// AddUsed records consumption. Called after confirmed success only, never
// speculatively, so failed synthesis is not charged.
func (l *Ledger) AddUsed(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		amount = 1
	}
	mu := l.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	if err := l.limits.AddUsed(ctx, userID, amount); err != nil {
		return fmt.Errorf("ledger: add used: %w", err)
	}
	l.appendHistory(ctx, userID, domain.HistoryActionUse, amount, "")
	return nil
}

// AddPurchased credits purchased allowance after confirmed payment
// settlement. The paymentID deduplicates replayed provider callbacks; a
// replay returns domain.ErrDuplicateOperation and credits nothing.
func (l *Ledger) AddPurchased(ctx context.Context, userID string, amount int, paymentID string) error {
	if amount <= 0 {
		return fmt.Errorf("ledger: purchase amount must be positive")
	}
	if paymentID == "" {
		return fmt.Errorf("ledger: payment id is required")
	}
	mu := l.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	if err := l.limits.AddPurchased(ctx, userID, amount, paymentID); err != nil {
		return fmt.Errorf("ledger: add purchased: %w", err)
	}
	l.appendHistory(ctx, userID, domain.HistoryActionPurchase, amount, "payment "+paymentID)
	return nil
}

// CanRequest reports whether the flood-control window has elapsed.
func (l *Ledger) CanRequest(ctx context.Context, userID string) (bool, error) {
	limit, err := l.GetLimit(ctx, userID)
	if err != nil {
		return false, err
	}
	if limit.LastRequest.IsZero() {
		return true, nil
	}
	return l.now().Sub(limit.LastRequest) >= l.flood, nil
}

// SecondsToWait returns the remaining flood-control wait, floored at zero.
func (l *Ledger) SecondsToWait(ctx context.Context, userID string) (int, error) {
	limit, err := l.GetLimit(ctx, userID)
	if err != nil {
		return 0, err
	}
	if limit.LastRequest.IsZero() {
		return 0, nil
	}
	remaining := l.flood - l.now().Sub(limit.LastRequest)
	if remaining <= 0 {
		return 0, nil
	}
	return int(remaining / time.Second), nil
}

// SetLastRequest stamps the flood-control gate. Callers stamp exactly once
// per admitted request, before synthesis starts, so slow jobs cannot be used
// to slip past the interval.
func (l *Ledger) SetLastRequest(ctx context.Context, userID string) error {
	mu := l.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	if err := l.limits.SetLastRequest(ctx, userID, l.now()); err != nil {
		return fmt.Errorf("ledger: set last request: %w", err)
	}
	return nil
}

// SetFrozen toggles the administrative kill-switch.
func (l *Ledger) SetFrozen(ctx context.Context, userID string, frozen bool) error {
	mu := l.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	if err := l.limits.SetFrozen(ctx, userID, frozen); err != nil {
		return fmt.Errorf("ledger: set frozen: %w", err)
	}
	l.logger.Info().Str("user_id", userID).Bool("frozen", frozen).Msg("ledger: frozen flag updated")
	return nil
}

// SetFreeLimit overrides the recurring free allowance size.
func (l *Ledger) SetFreeLimit(ctx context.Context, userID string, limit int) error {
	if limit < 0 {
		return fmt.Errorf("ledger: free limit must not be negative")
	}
	mu := l.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	if err := l.limits.SetFreeLimit(ctx, userID, limit); err != nil {
		return fmt.Errorf("ledger: set free limit: %w", err)
	}
	return nil
}

// History returns the newest audit records for a user.
func (l *Ledger) History(ctx context.Context, userID string, limit int) ([]domain.HistoryRecord, error) {
	return l.history.ListRecent(ctx, userID, limit)
}

// Totals aggregates the audit log for the stats surface.
func (l *Ledger) Totals(ctx context.Context) (*domain.UsageTotals, error) {
	return l.history.Totals(ctx)
}

// appendHistory is best-effort: the log is observational and must never fail
// a ledger operation.
func (l *Ledger) appendHistory(ctx context.Context, userID string, action domain.HistoryAction, amount int, comment string) {
	rec := &domain.HistoryRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Amount:    amount,
		Comment:   comment,
		CreatedAt: l.now(),
	}
	if err := l.history.Append(ctx, rec); err != nil {
		l.logger.Warn().Err(err).Str("user_id", userID).Str("action", string(action)).Msg("ledger: history append failed")
	}
}
