package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"voicebot/internal/domain"
)

func waitSignal(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func expectNoSignal(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s", what)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConcurrencyNeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	const jobs = 8

	m := NewManager(capacity, zerolog.Nop())
	defer m.Close()

	var running, peak int32
	gate := make(chan struct{})
	handles := make([]*Handle, 0, jobs)

	for i := 0; i < jobs; i++ {
		h, err := m.Submit(context.Background(), fmt.Sprintf("u%d", i), func(ctx context.Context) ([]byte, error) {
			cur := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
					break
				}
			}
			<-gate
			atomic.AddInt32(&running, -1)
			return []byte("ok"), nil
		}, nil)
		if err != nil {
			t.Fatalf("Submit #%d: %v", i, err)
		}
		handles = append(handles, h)
	}

	// Let the first wave occupy every slot, then unblock everyone.
	time.Sleep(100 * time.Millisecond)
	close(gate)

	for i, h := range handles {
		if _, err := h.Await(context.Background()); err != nil {
			t.Fatalf("job %d failed: %v", i, err)
		}
	}

	if got := atomic.LoadInt32(&peak); got > capacity {
		t.Fatalf("observed %d concurrent jobs, capacity is %d", got, capacity)
	}
}

func TestFIFOStartOrder(t *testing.T) {
	m := NewManager(1, zerolog.Nop())
	defer m.Close()

	const jobs = 5
	var mu sync.Mutex
	var order []int
	handles := make([]*Handle, 0, jobs)

	for i := 0; i < jobs; i++ {
		i := i
		h, err := m.Submit(context.Background(), "u1", func(ctx context.Context) ([]byte, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil, nil
		}, nil)
		if err != nil {
			t.Fatalf("Submit #%d: %v", i, err)
		}
		handles = append(handles, h)
	}

	for _, h := range handles {
		if _, err := h.Await(context.Background()); err != nil {
			t.Fatalf("Await: %v", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, got := range order {
		if got != i {
			t.Fatalf("start order %v, want ascending", order)
		}
	}
}

func TestBacklogPromotedAsSlotsFree(t *testing.T) {
	m := NewManager(3, zerolog.Nop())
	defer m.Close()

	type slowJob struct {
		started chan struct{}
		release chan struct{}
	}
	slow := make([]*slowJob, 3)
	for i := range slow {
		slow[i] = &slowJob{started: make(chan struct{}), release: make(chan struct{})}
	}

	handles := make([]*Handle, 0, 5)
	for i := 0; i < 3; i++ {
		j := slow[i]
		h, err := m.Submit(context.Background(), "u1", func(ctx context.Context) ([]byte, error) {
			close(j.started)
			<-j.release
			return []byte("slow"), nil
		}, nil)
		if err != nil {
			t.Fatalf("Submit slow #%d: %v", i, err)
		}
		handles = append(handles, h)
	}

	fastStarted := make([]chan struct{}, 2)
	for i := range fastStarted {
		started := make(chan struct{})
		fastStarted[i] = started
		h, err := m.Submit(context.Background(), "u1", func(ctx context.Context) ([]byte, error) {
			close(started)
			return []byte("fast"), nil
		}, nil)
		if err != nil {
			t.Fatalf("Submit fast #%d: %v", i, err)
		}
		handles = append(handles, h)
	}

	// Jobs 1-3 hold all slots; jobs 4-5 must wait.
	for i, j := range slow {
		waitSignal(t, j.started, fmt.Sprintf("slow job %d start", i))
	}
	expectNoSignal(t, fastStarted[0], "early start of job 4")

	// Freeing one slot releases exactly the head of the backlog.
	close(slow[1].release)
	waitSignal(t, fastStarted[0], "job 4 start")

	close(slow[0].release)
	close(slow[2].release)
	waitSignal(t, fastStarted[1], "job 5 start")

	for i, h := range handles {
		if _, err := h.Await(context.Background()); err != nil {
			t.Fatalf("job %d failed: %v", i, err)
		}
	}
}

func TestFailureDeliveredToOwnHandleOnly(t *testing.T) {
	m := NewManager(1, zerolog.Nop())
	defer m.Close()

	boom := errors.New("model exploded")
	failing, err := m.Submit(context.Background(), "u1", func(ctx context.Context) ([]byte, error) {
		return nil, boom
	}, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	healthy, err := m.Submit(context.Background(), "u2", func(ctx context.Context) ([]byte, error) {
		return []byte("fine"), nil
	}, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := failing.Await(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("failing job error = %v, want %v", err, boom)
	}
	audio, err := healthy.Await(context.Background())
	if err != nil {
		t.Fatalf("healthy job failed: %v", err)
	}
	if string(audio) != "fine" {
		t.Fatalf("healthy job audio = %q", audio)
	}
}

func TestPanicInsideJobIsCaptured(t *testing.T) {
	m := NewManager(1, zerolog.Nop())
	defer m.Close()

	h, err := m.Submit(context.Background(), "u1", func(ctx context.Context) ([]byte, error) {
		panic("unexpected tensor shape")
	}, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := h.Await(context.Background()); !errors.Is(err, domain.ErrSynthesisFailure) {
		t.Fatalf("panic error = %v, want ErrSynthesisFailure", err)
	}

	// The slot must have been released despite the panic.
	next, err := m.Submit(context.Background(), "u1", func(ctx context.Context) ([]byte, error) {
		return []byte("ok"), nil
	}, nil)
	if err != nil {
		t.Fatalf("Submit after panic: %v", err)
	}
	if _, err := next.Await(context.Background()); err != nil {
		t.Fatalf("job after panic failed: %v", err)
	}
}

func TestHandleResolvedExactlyOnce(t *testing.T) {
	m := NewManager(2, zerolog.Nop())
	defer m.Close()

	h, err := m.Submit(context.Background(), "u1", func(ctx context.Context) ([]byte, error) {
		return []byte("once"), nil
	}, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	first, err := h.Await(context.Background())
	if err != nil {
		t.Fatalf("first Await: %v", err)
	}
	second, err := h.Await(context.Background())
	if err != nil {
		t.Fatalf("second Await: %v", err)
	}
	if string(first) != "once" || string(second) != "once" {
		t.Fatalf("Await results diverged: %q vs %q", first, second)
	}
}

func TestNotifyHookInvokedOutsideLock(t *testing.T) {
	m := NewManager(1, zerolog.Nop())
	defer m.Close()

	gate := make(chan struct{})
	defer close(gate)
	if _, err := m.Submit(context.Background(), "u1", func(ctx context.Context) ([]byte, error) {
		<-gate
		return nil, nil
	}, nil); err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}

	notified := make(chan string, 1)
	notify := func(ctx context.Context, userID, message string) {
		notified <- userID + ": " + message
	}
	if _, err := m.Submit(context.Background(), "u2", func(ctx context.Context) ([]byte, error) {
		return nil, nil
	}, notify); err != nil {
		t.Fatalf("Submit with notify: %v", err)
	}

	select {
	case msg := <-notified:
		if msg == "" {
			t.Fatal("empty notification")
		}
	case <-time.After(time.Second):
		t.Fatal("notify hook not invoked")
	}
}

func TestNotifyPanicDoesNotAbortJob(t *testing.T) {
	m := NewManager(1, zerolog.Nop())
	defer m.Close()

	h, err := m.Submit(context.Background(), "u1", func(ctx context.Context) ([]byte, error) {
		return []byte("ok"), nil
	}, func(ctx context.Context, userID, message string) {
		panic("telegram down")
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := h.Await(context.Background()); err != nil {
		t.Fatalf("job aborted by notify failure: %v", err)
	}
}

func TestCloseFailsPendingHandles(t *testing.T) {
	m := NewManager(1, zerolog.Nop())

	started := make(chan struct{})
	release := make(chan struct{})
	blocker, err := m.Submit(context.Background(), "u1", func(ctx context.Context) ([]byte, error) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, nil
	}, nil)
	if err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}
	waitSignal(t, started, "blocker start")

	pending, err := m.Submit(context.Background(), "u2", func(ctx context.Context) ([]byte, error) {
		return nil, nil
	}, nil)
	if err != nil {
		t.Fatalf("Submit pending: %v", err)
	}

	// Close while the only slot is still held, so the pending entry can
	// never be promoted first.
	closed := make(chan struct{})
	go func() {
		m.Close()
		close(closed)
	}()

	if _, err := pending.Await(context.Background()); !errors.Is(err, domain.ErrQueueClosed) {
		t.Fatalf("pending error = %v, want ErrQueueClosed", err)
	}

	close(release)
	waitSignal(t, closed, "close finished")

	if _, err := blocker.Await(context.Background()); err != nil {
		t.Fatalf("running job should settle normally: %v", err)
	}

	if _, err := m.Submit(context.Background(), "u3", func(ctx context.Context) ([]byte, error) {
		return nil, nil
	}, nil); !errors.Is(err, domain.ErrQueueClosed) {
		t.Fatalf("Submit after Close = %v, want ErrQueueClosed", err)
	}
}
