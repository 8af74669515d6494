// Package queue serializes admission of synthesis jobs and caps how many run
// concurrently. Submitters get a single-resolution handle; a lone coordinator
// goroutine drains the FIFO backlog into free slots.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"voicebot/internal/domain"
	"voicebot/internal/infra"
)

// Job is the opaque unit of work: text already validated, producing audio
// bytes or a failure. The context ends when the queue shuts down.
type Job func(ctx context.Context) ([]byte, error)

// NotifyFunc is the optional side-channel invoked when a submitted job is
// queued. It is best-effort; its failure never affects the job. The messaging
// front-end supplies the implementation.
type NotifyFunc func(ctx context.Context, userID, message string)

type entry struct {
	handle     *Handle
	job        Job
	userID     string
	enqueuedAt time.Time
}

// Stats is a point-in-time snapshot of queue occupancy.
type Stats struct {
	Pending  int `json:"pending"`
	Running  int `json:"running"`
	Capacity int `json:"capacity"`
}

// Manager owns the pending FIFO and the slot pool. One coordinator goroutine
// consumes "work available" signals and promotes head entries into slots, so
// backlog processing never spawns unbounded waiter tasks.
type Manager struct {
	mu      sync.Mutex
	pending []*entry
	closed  bool

	slots  *SlotPool
	wake   chan struct{}
	logger infra.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a Manager with the given slot capacity and starts its
// drain coordinator.
func NewManager(capacity int, logger infra.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		slots:  NewSlotPool(capacity),
		wake:   make(chan struct{}, 1),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	m.wg.Add(1)
	go m.coordinate()
	return m
}

// Submit appends a job to the tail of the pending FIFO and returns a handle
// the caller can await. It never blocks on execution. The notify hook, when
// supplied, is invoked after the queue lock is released.
func (m *Manager) Submit(ctx context.Context, userID string, job Job, notify NotifyFunc) (*Handle, error) {
	if job == nil {
		return nil, fmt.Errorf("queue: job is required")
	}

	e := &entry{
		handle:     newHandle(),
		job:        job,
		userID:     userID,
		enqueuedAt: time.Now(),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, domain.ErrQueueClosed
	}
	m.pending = append(m.pending, e)
	position := len(m.pending)
	busy := m.slots.InUse() == m.slots.Capacity()
	m.mu.Unlock()

	if notify != nil {
		message := "request queued"
		if busy || position > 1 {
			message = "request queued, waiting for a free slot"
		}
		m.safeNotify(ctx, notify, userID, message)
	}

	m.signal()
	return e.handle, nil
}

// Stats reports current backlog depth and slot occupancy.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Pending:  len(m.pending),
		Running:  m.slots.InUse(),
		Capacity: m.slots.Capacity(),
	}
}

// Close stops the coordinator, fails every still-pending handle and waits for
// running jobs to settle. No handle is ever left unresolved.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.wg.Wait()
		return
	}
	m.closed = true
	orphaned := m.pending
	m.pending = nil
	m.mu.Unlock()

	m.cancel()
	for _, e := range orphaned {
		e.handle.resolve(nil, domain.ErrQueueClosed)
	}
	m.wg.Wait()
}

func (m *Manager) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) coordinate() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.wake:
			m.drain()
		}
	}
}

// drain promotes head entries into free slots: strict FIFO start order, one
// promotion per entry. It stops as soon as the backlog is empty or all slots
// are held; a completing job re-signals the coordinator.
func (m *Manager) drain() {
	for {
		m.mu.Lock()
		if m.closed || len(m.pending) == 0 {
			m.mu.Unlock()
			return
		}
		release, ok := m.slots.TryAcquire()
		if !ok {
			m.mu.Unlock()
			return
		}
		e := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()

		m.wg.Add(1)
		go m.run(e, release)
	}
}

// run executes one promoted entry. The slot is released and the coordinator
// re-signaled no matter how the job ends, including a panic inside the
// closure, so one bad job never stalls the queue.
func (m *Manager) run(e *entry, release func()) {
	defer m.wg.Done()
	defer func() {
		release()
		m.signal()
	}()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Str("user_id", e.userID).Interface("panic", r).Msg("queue: job panicked")
			e.handle.resolve(nil, fmt.Errorf("%w: job panic: %v", domain.ErrSynthesisFailure, r))
		}
	}()

	started := time.Now()
	audio, err := e.job(m.ctx)
	if err != nil {
		m.logger.Warn().Err(err).Str("user_id", e.userID).Dur("took", time.Since(started)).Msg("queue: job failed")
	} else {
		m.logger.Debug().Str("user_id", e.userID).Dur("queued_for", started.Sub(e.enqueuedAt)).Dur("took", time.Since(started)).Msg("queue: job done")
	}
	e.handle.resolve(audio, err)
}

// safeNotify shields the queue from a misbehaving hook.
func (m *Manager) safeNotify(ctx context.Context, notify NotifyFunc, userID, message string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn().Str("user_id", userID).Interface("panic", r).Msg("queue: notify hook panicked")
		}
	}()
	notify(ctx, userID, message)
}
