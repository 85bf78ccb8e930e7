// Package epoch tracks the fixed-duration mining window countdown.
package epoch

import (
	"context"
	"sync"
	"time"

	"github.com/NARAProtocol/nara-simple-ui/internal/log"
)

// Clock maintains a 1-second-resolution countdown to the next epoch
// boundary. On reaching zero it resets to the full epoch duration and
// fires the boundary callback: the boundary invalidates the cap/used
// figures, so the caller refreshes its snapshot out of band.
type Clock struct {
	duration time.Duration
	tick     time.Duration

	mu        sync.Mutex
	remaining uint64 // seconds
}

// New creates a clock for the given epoch duration, counting down from a
// full window until the first SetRemaining.
func New(duration time.Duration) *Clock {
	return NewWithTick(duration, time.Second)
}

// NewWithTick creates a clock with a custom tick interval. Tests shrink
// the interval; production uses one second.
func NewWithTick(duration, tick time.Duration) *Clock {
	return &Clock{
		duration:  duration,
		tick:      tick,
		remaining: uint64(duration / time.Second),
	}
}

// Remaining returns the seconds left in the current epoch.
func (c *Clock) Remaining() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// SetRemaining re-seeds the countdown from a freshly polled
// epochSecondsRemaining. The remote figure wins over local counting.
func (c *Clock) SetRemaining(seconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining = seconds
}

// Run counts down until ctx is cancelled, invoking onBoundary every time
// the countdown reaches zero. onBoundary runs on the clock goroutine.
func (c *Clock) Run(ctx context.Context, onBoundary func()) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.step() {
				log.Epoch.Debug().Msg("epoch boundary crossed")
				if onBoundary != nil {
					onBoundary()
				}
			}
		}
	}
}

// step decrements the countdown one second and reports whether the
// boundary was crossed, resetting to the full duration if so.
func (c *Clock) step() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining > 0 {
		return false
	}
	c.remaining = uint64(c.duration / time.Second)
	return true
}
