package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"voicebot/internal/domain"
	"voicebot/internal/infra"
	"voicebot/internal/sqlinline"
)

// LimitRepositoryPG implements domain.LimitRepository backed by PostgreSQL.
// Each mutation is a single statement (or a single transaction), so per-row
// updates never lose concurrent increments.
type LimitRepositoryPG struct {
	sql          *infra.SQLRunner
	defaultLimit int
}

// NewLimitRepository creates a new LimitRepositoryPG. defaultLimit seeds the
// free allowance of rows created lazily on first reference.
func NewLimitRepository(sql *infra.SQLRunner, defaultLimit int) *LimitRepositoryPG {
	return &LimitRepositoryPG{sql: sql, defaultLimit: defaultLimit}
}

// Get fetches the user's row, creating it on first reference.
func (r *LimitRepositoryPG) Get(ctx context.Context, userID string) (*domain.UserLimit, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertAndGetUserLimit, userID, r.defaultLimit)
	return scanLimit(row)
}

// ResetFreeWindow zeroes the consumed free allowance when the stored reset
// stamp is older than olderThan. The WHERE guard makes concurrent callers
// race harmlessly: only one wins, the rest see zero rows affected.
func (r *LimitRepositoryPG) ResetFreeWindow(ctx context.Context, userID string, olderThan time.Time) (bool, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QResetFreeWindow, userID, olderThan)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AddUsed increments the window counter and the lifetime counter.
func (r *LimitRepositoryPG) AddUsed(ctx context.Context, userID string, amount int) error {
	if err := r.ensure(ctx, userID); err != nil {
		return err
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QAddUsed, userID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddPurchased credits purchased allowance exactly once per paymentID. The
// payment row insert and the counter update share one transaction so a
// replayed payment-provider callback can never double-credit.
func (r *LimitRepositoryPG) AddPurchased(ctx context.Context, userID string, amount int, paymentID string) error {
	if err := r.ensure(ctx, userID); err != nil {
		return err
	}
	return r.sql.WithTx(ctx, func(tx infra.SQLExecutor) error {
		tag, err := tx.Exec(ctx, sqlinline.QInsertPurchase, paymentID, userID, amount)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrDuplicateOperation
		}
		_, err = tx.Exec(ctx, sqlinline.QAddPurchased, userID, amount)
		return err
	})
}

// SetLastRequest stamps the flood-control gate.
func (r *LimitRepositoryPG) SetLastRequest(ctx context.Context, userID string, at time.Time) error {
	if err := r.ensure(ctx, userID); err != nil {
		return err
	}
	_, err := r.sql.Exec(ctx, sqlinline.QSetLastRequest, userID, at)
	return err
}

// SetFrozen toggles the administrative kill-switch.
func (r *LimitRepositoryPG) SetFrozen(ctx context.Context, userID string, frozen bool) error {
	if err := r.ensure(ctx, userID); err != nil {
		return err
	}
	_, err := r.sql.Exec(ctx, sqlinline.QSetFrozen, userID, frozen)
	return err
}

// SetFreeLimit overrides the recurring free allowance size.
func (r *LimitRepositoryPG) SetFreeLimit(ctx context.Context, userID string, limit int) error {
	if err := r.ensure(ctx, userID); err != nil {
		return err
	}
	_, err := r.sql.Exec(ctx, sqlinline.QSetFreeLimit, userID, limit)
	return err
}

func (r *LimitRepositoryPG) ensure(ctx context.Context, userID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QEnsureUserLimit, userID, r.defaultLimit)
	return err
}

func scanLimit(row pgx.Row) (*domain.UserLimit, error) {
	var l domain.UserLimit
	var lastUsed, lastRequest *time.Time
	if err := row.Scan(
		&l.UserID,
		&l.Used,
		&l.Purchased,
		&l.FreeLimit,
		&l.LifetimeUsed,
		&l.LastFreeReset,
		&lastUsed,
		&lastRequest,
		&l.Frozen,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if lastUsed != nil {
		l.LastUsed = *lastUsed
	}
	if lastRequest != nil {
		l.LastRequest = *lastRequest
	}
	return &l, nil
}

var _ domain.LimitRepository = (*LimitRepositoryPG)(nil)
