package queue

import (
	"context"
	"testing"
	"time"
)

func TestSlotPoolCapacity(t *testing.T) {
	p := NewSlotPool(2)

	r1, ok := p.TryAcquire()
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	r2, ok := p.TryAcquire()
	if !ok {
		t.Fatal("second acquire should succeed")
	}
	if _, ok := p.TryAcquire(); ok {
		t.Fatal("third acquire should fail at capacity 2")
	}
	if got := p.InUse(); got != 2 {
		t.Fatalf("InUse = %d, want 2", got)
	}

	r1()
	if _, ok := p.TryAcquire(); !ok {
		t.Fatal("acquire after release should succeed")
	}
	r2()
}

func TestSlotPoolReleaseIsIdempotent(t *testing.T) {
	p := NewSlotPool(1)

	release, ok := p.TryAcquire()
	if !ok {
		t.Fatal("acquire failed")
	}
	release()
	release() // second call must not free a slot that was never held

	if got := p.InUse(); got != 0 {
		t.Fatalf("InUse = %d, want 0", got)
	}
	r, ok := p.TryAcquire()
	if !ok {
		t.Fatal("acquire after double release failed")
	}
	if _, ok := p.TryAcquire(); ok {
		t.Fatal("capacity 1 pool handed out two slots")
	}
	r()
}

func TestSlotPoolAcquireHonorsContext(t *testing.T) {
	p := NewSlotPool(1)
	release, ok := p.TryAcquire()
	if !ok {
		t.Fatal("acquire failed")
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatal("Acquire should give up when ctx ends")
	}
}
