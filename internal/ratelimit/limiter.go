package ratelimit

import (
	"context"
	"time"

	"github.com/altibbe/hedamo/internal/config"
)

// Result reports the outcome of a single admission decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter admits or rejects a request for the given client key. A caller
// that keeps getting rejected after the window fills stays blocked for the
// configured block duration.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Options carries the fixed-window parameters shared by all limiter
// implementations.
type Options struct {
	Points        int
	Window        time.Duration
	BlockDuration time.Duration
}

func OptionsFromConfig(cfg config.Config) Options {
	opts := Options{
		Points:        cfg.RateLimit.Points,
		Window:        cfg.RateLimit.Window,
		BlockDuration: cfg.RateLimit.BlockDuration,
	}
	if opts.Points <= 0 {
		opts.Points = 100
	}
	if opts.Window <= 0 {
		opts.Window = 15 * time.Minute
	}
	if opts.BlockDuration <= 0 {
		opts.BlockDuration = opts.Window
	}
	return opts
}

// RetryAfterSeconds rounds a wait up to whole seconds, never below one.
// The value feeds both the Retry-After header and the response body.
func RetryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
