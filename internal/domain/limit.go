package domain

import "time"

// Default entitlement knobs. Config may override all of them.
const (
	DefaultFreeLimit     = 30
	DefaultFloodInterval = 5 * time.Second
	DefaultResetWindow   = 7 * 24 * time.Hour
)

// UserLimit is one user's entitlement row. Rows are created lazily on first
// reference and never deleted.
type UserLimit struct {
	UserID        string
	Used          int
	Purchased     int
	FreeLimit     int
	LifetimeUsed  int
	LastFreeReset time.Time
	LastUsed      time.Time
	LastRequest   time.Time
	Frozen        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Total returns the full allowance for the current window.
func (l UserLimit) Total() int {
	return l.FreeLimit + l.Purchased
}

// Left returns the remaining allowance, floored at zero.
func (l UserLimit) Left() int {
	left := l.Total() - l.Used
	if left < 0 {
		return 0
	}
	return left
}

// CanConsume reports whether the user may consume `required` more jobs.
// Frozen accounts are always denied. The check is advisory: consumption is
// not transactionally tied to it.
func (l UserLimit) CanConsume(required int) bool {
	if l.Frozen {
		return false
	}
	return l.Used+required <= l.Total()
}

// ResetDue reports whether the free-portion window expired at the given time.
func (l UserLimit) ResetDue(now time.Time, window time.Duration) bool {
	if l.LastFreeReset.IsZero() {
		return false
	}
	return now.Sub(l.LastFreeReset) > window
}
