package domain

import (
	"context"
	"time"
)

// LimitRepository defines per-user entitlement persistence. Implementations
// must make every mutating call atomic for the addressed user row.
type LimitRepository interface {
	// Get returns the user's row, creating it with zero counters and
	// lastFreeReset = now when it does not exist yet.
	Get(ctx context.Context, userID string) (*UserLimit, error)
	// ResetFreeWindow zeroes `used` and refreshes lastFreeReset, but only
	// when the stored lastFreeReset is older than olderThan. Purchased
	// allowance is untouched. Reports whether a reset happened.
	ResetFreeWindow(ctx context.Context, userID string, olderThan time.Time) (bool, error)
	// AddUsed increments used and the lifetime counter and stamps lastUsed.
	AddUsed(ctx context.Context, userID string, amount int) error
	// AddPurchased credits purchased allowance exactly once per paymentID.
	// A replayed paymentID returns ErrDuplicateOperation and credits nothing.
	AddPurchased(ctx context.Context, userID string, amount int, paymentID string) error
	SetLastRequest(ctx context.Context, userID string, at time.Time) error
	SetFrozen(ctx context.Context, userID string, frozen bool) error
	SetFreeLimit(ctx context.Context, userID string, limit int) error
}

// HistoryRepository defines the append-only ledger audit log.
type HistoryRepository interface {
	Append(ctx context.Context, rec *HistoryRecord) error
	ListRecent(ctx context.Context, userID string, limit int) ([]HistoryRecord, error)
	Totals(ctx context.Context) (*UsageTotals, error)
}
