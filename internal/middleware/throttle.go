package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"garen-bot/internal/config"
	"garen-bot/internal/constants"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// clientIDHeader lets a chat front end sharing one IP throttle per guild or user.
const clientIDHeader = "X-Client-ID"

// Throttle keeps one token bucket per client and forgets idle clients.
type Throttle struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry

	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
	logger       zerolog.Logger
}

type throttleEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewThrottle(rps float64, burst int, logger zerolog.Logger) *Throttle {
	return &Throttle{
		entries:      make(map[string]*throttleEntry),
		rps:          rate.Limit(rps),
		burst:        max(burst, 1),
		idleTTL:      constants.ThrottleIdleTTL,
		cleanupEvery: constants.ThrottleCleanupEvery,
		now:          time.Now,
		logger:       logger,
	}
}

// NewThrottleFromConfig is the fx constructor.
func NewThrottleFromConfig(cfg *config.Config, logger zerolog.Logger) *Throttle {
	return NewThrottle(cfg.ThrottleRPS, cfg.ThrottleBurst, logger)
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if ent, ok := t.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(t.rps, t.burst)
	t.entries[key] = &throttleEntry{lim: lim, lastSeen: now}
	return lim
}

func (t *Throttle) Allow(key string) bool {
	return t.limiter(key).AllowN(t.now(), 1)
}

// Cleanup drops clients not seen within the idle TTL.
func (t *Throttle) Cleanup() int {
	cutoff := t.now().Add(-t.idleTTL)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for k, ent := range t.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(t.entries, k)
			removed++
		}
	}
	return removed
}

func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// StartJanitor runs Cleanup periodically until ctx is done.
func (t *Throttle) StartJanitor(ctx context.Context) {
	if t.cleanupEvery <= 0 {
		return
	}

	ticker := time.NewTicker(t.cleanupEvery)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := t.Cleanup(); n > 0 {
					t.logger.Debug().Int("removed", n).Msg("throttle entries cleaned up")
				}
			}
		}
	}()
}

// Middleware rejects clients over their budget with 429.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ClientKey(r)
		if !t.Allow(key) {
			zerolog.Ctx(r.Context()).Warn().Str("client", key).Msg("client throttled")
			w.Header().Set("Retry-After", strconv.Itoa(1))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientKey prefers X-Client-ID, then the remote host.
func ClientKey(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(clientIDHeader)); v != "" {
		return v
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
