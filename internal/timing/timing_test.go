package timing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedClockAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := NewFixedClock(start)
	assert.Equal(t, start, clock.Now())

	clock.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), clock.Now())

	clock.Set(start)
	assert.Equal(t, start, clock.Now())
}

func TestTimerSleeperWaits(t *testing.T) {
	start := time.Now()
	require.NoError(t, TimerSleeper{}.Wait(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestTimerSleeperHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := TimerSleeper{}.Wait(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUninterruptibleIgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	Uninterruptible(ctx, TimerSleeper{}, 15*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestInstantSleeperRecordsAndRunsHook(t *testing.T) {
	calls := 0
	s := NewInstantSleeper(func() { calls++ })
	require.NoError(t, s.Wait(context.Background(), 900*time.Millisecond))
	require.NoError(t, s.Wait(context.Background(), 240*time.Millisecond))
	assert.Equal(t, []time.Duration{900 * time.Millisecond, 240 * time.Millisecond}, s.Waits())
	assert.Equal(t, 2, calls)
}
