package queue

import (
	"context"
	"sync"
)

// SlotPool is a counting semaphore bounding concurrent synthesis work. The
// release function returned by either acquire method is safe to call more
// than once; only the first call frees the slot.
type SlotPool struct {
	sem chan struct{}
}

// NewSlotPool creates a pool with the given capacity.
func NewSlotPool(capacity int) *SlotPool {
	if capacity <= 0 {
		capacity = 1
	}
	return &SlotPool{sem: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is free or ctx ends. It reports false when no
// slot was acquired.
func (p *SlotPool) Acquire(ctx context.Context) (release func(), ok bool) {
	select {
	case p.sem <- struct{}{}:
		return p.releaseFunc(), true
	case <-ctx.Done():
		return nil, false
	}
}

// TryAcquire grabs a slot without blocking.
func (p *SlotPool) TryAcquire() (release func(), ok bool) {
	select {
	case p.sem <- struct{}{}:
		return p.releaseFunc(), true
	default:
		return nil, false
	}
}

func (p *SlotPool) releaseFunc() func() {
	var once sync.Once
	return func() {
		once.Do(func() { <-p.sem })
	}
}

// Capacity returns the total number of slots.
func (p *SlotPool) Capacity() int { return cap(p.sem) }

// InUse returns the number of held slots.
func (p *SlotPool) InUse() int { return len(p.sem) }
