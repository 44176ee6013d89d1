package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/altibbe/hedamo/internal/clock"
)

type memoryEntry struct {
	count        int
	windowStart  time.Time
	blockedUntil time.Time
}

// MemoryLimiter is a fixed-window counter held in process memory. All state
// changes happen under a single mutex so concurrent requests for the same key
// never double-spend a point.
type MemoryLimiter struct {
	opts  Options
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]*memoryEntry

	stop chan struct{}
	done chan struct{}
}

func NewMemoryLimiter(opts Options, clk clock.Clock) *MemoryLimiter {
	return &MemoryLimiter{
		opts:    opts,
		clock:   clk,
		entries: make(map[string]*memoryEntry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &memoryEntry{windowStart: now}
		m.entries[key] = e
	}

	if e.blockedUntil.After(now) {
		return m.rejected(e, now), nil
	}

	if now.Sub(e.windowStart) >= m.opts.Window {
		e.count = 0
		e.windowStart = now
		e.blockedUntil = time.Time{}
	}

	if e.count >= m.opts.Points {
		e.blockedUntil = now.Add(m.opts.BlockDuration)
		return m.rejected(e, now), nil
	}

	e.count++
	reset := e.windowStart.Add(m.opts.Window)
	return &Result{
		Allowed:   true,
		Limit:     m.opts.Points,
		Remaining: m.opts.Points - e.count,
		ResetTime: reset,
	}, nil
}

func (m *MemoryLimiter) rejected(e *memoryEntry, now time.Time) *Result {
	until := e.blockedUntil
	if until.IsZero() || !until.After(now) {
		until = e.windowStart.Add(m.opts.Window)
	}
	return &Result{
		Allowed:    false,
		Limit:      m.opts.Points,
		Remaining:  0,
		ResetTime:  until,
		RetryAfter: until.Sub(now),
	}
}

// Start launches the janitor that evicts keys whose window and block have
// both lapsed.
func (m *MemoryLimiter) Start() {
	go m.janitor()
}

func (m *MemoryLimiter) Stop() {
	close(m.stop)
	<-m.done
}

func (m *MemoryLimiter) janitor() {
	defer close(m.done)

	interval := m.opts.Window
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *MemoryLimiter) sweep() {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		if e.blockedUntil.After(now) {
			continue
		}
		if now.Sub(e.windowStart) >= m.opts.Window {
			delete(m.entries, key)
		}
	}
}

// Len reports the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
