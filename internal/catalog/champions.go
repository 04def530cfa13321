// Package catalog holds the Data Dragon champion table. It is loaded once,
// explicitly, and read without locks afterwards.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"garen-bot/internal/config"
	"garen-bot/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type Fetcher interface {
	GetChampions(ctx context.Context) ([]domain.Champion, error)
}

type table struct {
	byID map[int]domain.Champion
}

type Champions struct {
	fetcher Fetcher
	baseURL string
	version string
	logger  zerolog.Logger

	loaded atomic.Pointer[table]
	group  singleflight.Group
}

func New(fetcher Fetcher, baseURL, version string, logger zerolog.Logger) *Champions {
	return &Champions{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
		logger:  logger,
	}
}

// NewFromConfig is the fx constructor.
func NewFromConfig(cfg *config.Config, fetcher Fetcher, logger zerolog.Logger) *Champions {
	return New(fetcher, cfg.DDragonBaseURL, cfg.DDragonVersion, logger)
}

// EnsureLoaded populates the table on first success. Concurrent callers share
// one download; a failed download stores nothing so the next call tries again.
func (c *Champions) EnsureLoaded(ctx context.Context) error {
	if c.Loaded() {
		return nil
	}

	_, err, _ := c.group.Do("champions", func() (any, error) {
		if c.Loaded() {
			return nil, nil
		}

		champions, err := c.fetcher.GetChampions(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "fetch champion catalog")
		}
		if len(champions) == 0 {
			return nil, errors.New("champion catalog is empty")
		}

		t := &table{byID: make(map[int]domain.Champion, len(champions))}
		for _, ch := range champions {
			t.byID[ch.ID] = ch
		}
		c.loaded.Store(t)

		c.logger.Info().
			Int("champions", len(t.byID)).
			Str("version", c.version).
			Msg("champion catalog loaded")
		return nil, nil
	})
	return err
}

// Prefetch retries EnsureLoaded in the background path with doubling backoff
// until the table is loaded or ctx ends. Requests never download the catalog.
func (c *Champions) Prefetch(ctx context.Context, attemptTimeout, backoff, maxBackoff time.Duration) error {
	for {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		err := c.EnsureLoaded(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}

		c.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("champion catalog prefetch failed")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Wrap(ctx.Err(), "prefetch champion catalog")
		case <-timer.C:
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *Champions) Loaded() bool {
	return c.loaded.Load() != nil
}

// NameForID never fetches; it reports false until EnsureLoaded has succeeded.
func (c *Champions) NameForID(id int) (string, bool) {
	ch, ok := c.lookup(id)
	return ch.Name, ok
}

// NameOrUnknown is NameForID with the display fallback used in replies.
func (c *Champions) NameOrUnknown(id int) string {
	if name, ok := c.NameForID(id); ok {
		return name
	}
	return "Unknown"
}

func (c *Champions) lookup(id int) (domain.Champion, bool) {
	t := c.loaded.Load()
	if t == nil {
		return domain.Champion{}, false
	}
	ch, ok := t.byID[id]
	return ch, ok
}

// IconURL returns the square portrait for a champion id, or "" when unknown.
func (c *Champions) IconURL(id int) string {
	ch, ok := c.lookup(id)
	if !ok {
		return ""
	}
	return c.championImage(ch.Key)
}

func (c *Champions) ProfileIconURL(iconID int) string {
	return fmt.Sprintf("%s/%s/img/profileicon/%d.png", c.baseURL, c.version, iconID)
}

func (c *Champions) championImage(key string) string {
	return fmt.Sprintf("%s/%s/img/champion/%s.png", c.baseURL, c.version, key)
}
