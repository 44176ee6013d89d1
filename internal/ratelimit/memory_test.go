package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/altibbe/hedamo/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(points int, window, block time.Duration) (*MemoryLimiter, *clock.FakeClock) {
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewMemoryLimiter(Options{
		Points:        points,
		Window:        window,
		BlockDuration: block,
	}, clk), clk
}

func TestMemoryLimiter_AllowsWithinBudget(t *testing.T) {
	lim, _ := newTestLimiter(3, time.Minute, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := lim.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
	}
}

func TestMemoryLimiter_BlocksAfterBudgetExhausted(t *testing.T) {
	lim, clk := newTestLimiter(2, time.Minute, 5*time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := lim.Allow(ctx, "client-a")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	res, err := lim.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 5*time.Minute, res.RetryAfter)

	// the block outlives the original window
	clk.Advance(2 * time.Minute)
	res, err = lim.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 3*time.Minute, res.RetryAfter)
}

func TestMemoryLimiter_RecoversAfterBlockLapses(t *testing.T) {
	lim, clk := newTestLimiter(1, time.Minute, 2*time.Minute)
	ctx := context.Background()

	res, err := lim.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = lim.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	clk.Advance(2*time.Minute + time.Second)
	res, err = lim.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	lim, _ := newTestLimiter(1, time.Minute, time.Minute)
	ctx := context.Background()

	res, err := lim.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = lim.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	res, err = lim.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	lim, clk := newTestLimiter(2, time.Minute, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := lim.Allow(ctx, "client-a")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	clk.Advance(time.Minute)
	res, err := lim.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}

func TestMemoryLimiter_SweepEvictsStaleEntries(t *testing.T) {
	lim, clk := newTestLimiter(5, time.Minute, time.Minute)
	ctx := context.Background()

	_, err := lim.Allow(ctx, "client-a")
	require.NoError(t, err)
	_, err = lim.Allow(ctx, "client-b")
	require.NoError(t, err)
	require.Equal(t, 2, lim.Len())

	clk.Advance(90 * time.Second)
	lim.sweep()
	assert.Equal(t, 0, lim.Len())
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, RetryAfterSeconds(0))
	assert.Equal(t, 1, RetryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, 2, RetryAfterSeconds(1100*time.Millisecond))
	assert.Equal(t, 60, RetryAfterSeconds(time.Minute))
}
