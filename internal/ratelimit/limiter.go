// Package ratelimit throttles outbound Riot API calls to N per rolling window.
package ratelimit

import (
	"context"
	"time"

	"garen-bot/internal/constants"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Limiter admits at most limit calls per window. It never rejects: Acquire waits
// until the call fits or the caller's context ends.
type Limiter struct {
	limit  int
	window time.Duration

	// sem guards calls. It is held across the wait so concurrent callers observe
	// one consistent window; unlike a sync.Mutex a blocked caller can give up on ctx.
	sem   *semaphore.Weighted
	calls []time.Time

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	logger zerolog.Logger
}

type Option func(*Limiter)

func WithWindow(d time.Duration) Option {
	return func(l *Limiter) { l.window = d }
}

// WithClock replaces time.Now and the context-aware sleep, for tests.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) {
		l.now = now
		l.sleep = sleep
	}
}

func New(limit int, logger zerolog.Logger, opts ...Option) *Limiter {
	if limit < 1 {
		limit = 1
	}
	l := &Limiter{
		limit:  limit,
		window: constants.RateLimitWindow,
		sem:    semaphore.NewWeighted(1),
		calls:  make([]time.Time, 0, limit),
		now:    time.Now,
		sleep:  Sleep,
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)

	now := l.now()
	l.purge(now)

	if len(l.calls) >= l.limit {
		wait := l.window - now.Sub(l.calls[0])
		if wait > 0 {
			l.logger.Debug().
				Dur("wait", wait).
				Int("limit", l.limit).
				Msg("rate limit window full, waiting")
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
			// coarse reset: the whole window is considered spent after the wait
			l.calls = l.calls[:0]
			now = l.now()
		}
	}

	l.calls = append(l.calls, now)
	return nil
}

// InWindow returns the number of calls currently recorded.
func (l *Limiter) InWindow() int {
	if !l.sem.TryAcquire(1) {
		return l.limit
	}
	defer l.sem.Release(1)
	l.purge(l.now())
	return len(l.calls)
}

func (l *Limiter) purge(now time.Time) {
	keep := 0
	for _, at := range l.calls {
		if now.Sub(at) < l.window {
			l.calls[keep] = at
			keep++
		}
	}
	l.calls = l.calls[:keep]
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
