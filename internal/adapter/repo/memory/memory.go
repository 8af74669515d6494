// Package memory provides in-process implementations of the ledger
// repositories. The original deployment kept the same state in a flat JSON
// file; this keeps that no-database mode available for local runs and makes
// the ledger unit-testable without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"voicebot/internal/domain"
)

// Store implements domain.LimitRepository and domain.HistoryRepository with
// plain maps behind one mutex.
type Store struct {
	mu           sync.Mutex
	limits       map[string]*domain.UserLimit
	payments     map[string]struct{}
	history      []domain.HistoryRecord
	defaultLimit int

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewStore creates an empty store seeding new rows with defaultLimit.
func NewStore(defaultLimit int) *Store {
	return &Store{
		limits:       make(map[string]*domain.UserLimit),
		payments:     make(map[string]struct{}),
		defaultLimit: defaultLimit,
		Now:          time.Now,
	}
}

func (s *Store) get(userID string) *domain.UserLimit {
	l, ok := s.limits[userID]
	if !ok {
		now := s.Now()
		l = &domain.UserLimit{
			UserID:        userID,
			FreeLimit:     s.defaultLimit,
			LastFreeReset: now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		s.limits[userID] = l
	}
	return l
}

// Get returns a copy of the user's row, creating it on first reference.
func (s *Store) Get(_ context.Context, userID string) (*domain.UserLimit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := *s.get(userID)
	return &l, nil
}

// ResetFreeWindow zeroes used when the stored reset stamp is older than olderThan.
func (s *Store) ResetFreeWindow(_ context.Context, userID string, olderThan time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.get(userID)
	if !l.LastFreeReset.Before(olderThan) {
		return false, nil
	}
	l.Used = 0
	l.LastFreeReset = s.Now()
	l.UpdatedAt = s.Now()
	return true, nil
}

// AddUsed increments the window and lifetime counters.
func (s *Store) AddUsed(_ context.Context, userID string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.get(userID)
	l.Used += amount
	l.LifetimeUsed += amount
	l.LastUsed = s.Now()
	l.UpdatedAt = s.Now()
	return nil
}

// AddPurchased credits purchased allowance once per paymentID.
func (s *Store) AddPurchased(_ context.Context, userID string, amount int, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.payments[paymentID]; seen {
		return domain.ErrDuplicateOperation
	}
	s.payments[paymentID] = struct{}{}
	l := s.get(userID)
	l.Purchased += amount
	l.UpdatedAt = s.Now()
	return nil
}

// SetLastRequest stamps the flood-control gate.
func (s *Store) SetLastRequest(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.get(userID)
	l.LastRequest = at
	l.UpdatedAt = s.Now()
	return nil
}

// SetFrozen toggles the administrative kill-switch.
func (s *Store) SetFrozen(_ context.Context, userID string, frozen bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.get(userID)
	l.Frozen = frozen
	l.UpdatedAt = s.Now()
	return nil
}

// SetFreeLimit overrides the recurring free allowance size.
func (s *Store) SetFreeLimit(_ context.Context, userID string, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.get(userID)
	l.FreeLimit = limit
	l.UpdatedAt = s.Now()
	return nil
}

// Append records one audit entry.
func (s *Store) Append(_ context.Context, rec *domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.Now()
	}
	s.history = append(s.history, cp)
	return nil
}

// ListRecent returns the newest records for a user, newest first.
func (s *Store) ListRecent(_ context.Context, userID string, limit int) ([]domain.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []domain.HistoryRecord
	for _, rec := range s.history {
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Totals aggregates the audit log.
func (s *Store) Totals(_ context.Context) (*domain.UsageTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &domain.UsageTotals{TotalUsers: len(s.limits)}
	for _, rec := range s.history {
		switch rec.Action {
		case domain.HistoryActionUse:
			t.TotalSynthesis += rec.Amount
		case domain.HistoryActionPurchase:
			t.TotalPurchased += rec.Amount
		case domain.HistoryActionLimitExceeded:
			t.TotalDenied++
		}
	}
	return t, nil
}

var (
	_ domain.LimitRepository   = (*Store)(nil)
	_ domain.HistoryRepository = (*Store)(nil)
)
