package ratelimit

import (
	"context"

	"github.com/altibbe/hedamo/internal/clock"
	"github.com/altibbe/hedamo/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewLimiter),
)

// NewLimiter picks the redis-backed limiter when a redis address is
// configured, falling back to the in-process counter otherwise.
func NewLimiter(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, log *zap.Logger) (Limiter, error) {
	opts := OptionsFromConfig(cfg)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
		log.Info("rate limiter using redis",
			zap.String("addr", cfg.RedisAddr),
			zap.Int("points", opts.Points),
			zap.Duration("window", opts.Window),
		)
		return NewRedisLimiter(opts, client), nil
	}

	mem := NewMemoryLimiter(opts, clk)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			mem.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			mem.Stop()
			return nil
		},
	})
	log.Info("rate limiter using in-memory store",
		zap.Int("points", opts.Points),
		zap.Duration("window", opts.Window),
		zap.Duration("block", opts.BlockDuration),
	)
	return mem, nil
}
