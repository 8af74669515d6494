package repo

import (
	"context"

	"voicebot/internal/domain"
	"voicebot/internal/infra"
	"voicebot/internal/sqlinline"
)

// HistoryRepositoryPG implements domain.HistoryRepository. The table is
// append-only; nothing here updates or deletes rows.
type HistoryRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewHistoryRepository creates a new history repository backed by PostgreSQL.
func NewHistoryRepository(sql infra.SQLExecutor) *HistoryRepositoryPG {
	return &HistoryRepositoryPG{sql: sql}
}

// Append inserts one audit record.
func (r *HistoryRepositoryPG) Append(ctx context.Context, rec *domain.HistoryRecord) error {
	_, err := r.sql.Exec(ctx, sqlinline.QAppendHistory, rec.ID, rec.UserID, rec.Action, rec.Amount, rec.Comment)
	return err
}

// ListRecent returns the newest records for a user, newest first.
func (r *HistoryRepositoryPG) ListRecent(ctx context.Context, userID string, limit int) ([]domain.HistoryRecord, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListRecentHistory, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Action, &rec.Amount, &rec.Comment, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Totals aggregates the audit log for the stats surface.
func (r *HistoryRepositoryPG) Totals(ctx context.Context) (*domain.UsageTotals, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUsageTotals)
	var t domain.UsageTotals
	if err := row.Scan(&t.TotalUsers, &t.TotalSynthesis, &t.TotalPurchased, &t.TotalDenied); err != nil {
		return nil, err
	}
	return &t, nil
}

var _ domain.HistoryRepository = (*HistoryRepositoryPG)(nil)
