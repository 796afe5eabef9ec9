// Package timing supplies the clock and the simulated-latency step used by
// the modal controllers.
package timing

import (
	"context"
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Sleeper performs a fixed artificial delay.
type Sleeper interface {
	Wait(ctx context.Context, d time.Duration) error
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant until Set or Advance is called.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// TimerSleeper waits on a real timer.
type TimerSleeper struct{}

func (TimerSleeper) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InstantSleeper returns immediately and records requested delays.
type InstantSleeper struct {
	mu     sync.Mutex
	waits  []time.Duration
	during func()
}

// NewInstantSleeper returns a zero-delay sleeper. If during is non-nil it runs
// inside every Wait, standing in for events that arrive mid-delay.
func NewInstantSleeper(during func()) *InstantSleeper {
	return &InstantSleeper{during: during}
}

func (s *InstantSleeper) Wait(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	during := s.during
	s.mu.Unlock()
	if during != nil {
		during()
	}
	return ctx.Err()
}

// Waits returns the delays requested so far.
func (s *InstantSleeper) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.waits))
	copy(out, s.waits)
	return out
}

// Uninterruptible runs the delay to completion regardless of ctx cancellation.
// Values carried by ctx (trace spans, request ids) are preserved.
func Uninterruptible(ctx context.Context, s Sleeper, d time.Duration) {
	_ = s.Wait(context.WithoutCancel(ctx), d)
}
