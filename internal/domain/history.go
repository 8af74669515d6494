package domain

import "time"

// HistoryAction enumerates ledger audit actions.
type HistoryAction string

const (
	HistoryActionUse           HistoryAction = "use"
	HistoryActionPurchase      HistoryAction = "purchase"
	HistoryActionLimitExceeded HistoryAction = "limit_exceeded"
)

// HistoryRecord is one append-only ledger audit entry. Records are never
// mutated or deleted.
type HistoryRecord struct {
	ID        string
	UserID    string
	Action    HistoryAction
	Amount    int
	Comment   string
	CreatedAt time.Time
}

// UsageTotals aggregates the audit log for the stats surface.
type UsageTotals struct {
	TotalUsers     int
	TotalSynthesis int
	TotalPurchased int
	TotalDenied    int
}
