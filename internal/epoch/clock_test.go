package epoch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestClock_CountsDown(t *testing.T) {
	c := NewWithTick(10*time.Second, time.Millisecond)
	c.SetRemaining(5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx, nil)

	deadline := time.After(time.Second)
	for c.Remaining() >= 5 {
		select {
		case <-deadline:
			t.Fatal("countdown never advanced")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestClock_BoundaryResetsAndFires(t *testing.T) {
	c := NewWithTick(30*time.Second, time.Millisecond)
	c.SetRemaining(3)

	var fired atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx, func() { fired.Add(1) })

	deadline := time.After(time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("boundary callback never fired")
		case <-time.After(time.Millisecond):
		}
	}

	// After the boundary the countdown restarts from the full duration.
	if r := c.Remaining(); r == 0 || r > 30 {
		t.Errorf("Remaining after boundary = %d, want (0, 30]", r)
	}
}

func TestClock_SetRemainingWins(t *testing.T) {
	c := New(180 * time.Second)
	if c.Remaining() != 180 {
		t.Errorf("initial Remaining = %d, want 180", c.Remaining())
	}
	c.SetRemaining(42)
	if c.Remaining() != 42 {
		t.Errorf("Remaining = %d, want 42", c.Remaining())
	}
}

func TestClock_StoppedByContext(t *testing.T) {
	c := NewWithTick(10*time.Second, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Run(ctx, nil)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}
