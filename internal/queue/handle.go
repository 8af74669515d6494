package queue

import (
	"context"
	"sync"
)

// Handle is the single-resolution future returned to a submitter. It is
// resolved exactly once (success or failure); later resolutions are ignored.
type Handle struct {
	done  chan struct{}
	once  sync.Once
	audio []byte
	err   error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

func (h *Handle) resolve(audio []byte, err error) {
	h.once.Do(func() {
		h.audio = audio
		h.err = err
		close(h.done)
	})
}

// Await suspends until the job settles or ctx ends. Abandoning the wait does
// not cancel the job; a later Await still observes the outcome.
func (h *Handle) Await(ctx context.Context) ([]byte, error) {
	select {
	case <-h.done:
		return h.audio, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel closed once the job settles.
func (h *Handle) Done() <-chan struct{} { return h.done }
