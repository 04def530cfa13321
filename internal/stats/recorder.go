// Package stats counts Riot API request outcomes. Recording is best-effort:
// callers ignore errors and a missing Redis turns every call into a no-op.
package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garen-bot/internal/config"
	"garen-bot/internal/constants"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeRetry          Outcome = "retry"
	OutcomeRateLimited    Outcome = "rate_limited"
	OutcomeUpstreamError  Outcome = "upstream_error"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeTransportError Outcome = "transport_error"
)

type Event struct {
	// Endpoint is a short route name ("league-entries"), never a full URL.
	Endpoint string
	Outcome  Outcome
	At       time.Time
}

type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

type RedisRecorder struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisRecorder(rdb *redis.Client, prefix string, ttl time.Duration) *RedisRecorder {
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = "garen:riot"
	}
	return &RedisRecorder{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisRecorder) Record(ctx context.Context, ev Event) error {
	if r == nil || r.rdb == nil {
		return nil
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.totalKey(), string(ev.Outcome), 1)

	minute := r.minuteKey(at)
	pipe.HIncrBy(ctx, minute, string(ev.Outcome), 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, minute, r.ttl)
	}

	if endpoint := strings.TrimSpace(ev.Endpoint); endpoint != "" {
		pipe.HIncrBy(ctx, r.endpointKey(), endpoint+":"+string(ev.Outcome), 1)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisRecorder) totalKey() string    { return r.prefix + ":total" }
func (r *RedisRecorder) endpointKey() string { return r.prefix + ":endpoint" }

func (r *RedisRecorder) minuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", r.prefix, at.UTC().Format("200601021504"))
}

// NewRecorder returns a Redis-backed recorder when REDIS_ADDR is set, a no-op otherwise.
func NewRecorder(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (Recorder, error) {
	if cfg.RedisAddr == "" {
		logger.Debug().Msg("redis stats disabled")
		return Nop{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis stats ping")
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	})

	logger.Info().Str("addr", cfg.RedisAddr).Msg("redis stats enabled")
	return NewRedisRecorder(rdb, "garen:riot:"+cfg.Region, constants.StatsTTL), nil
}
