package api

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"garen-bot/internal/config"
	"garen-bot/internal/constants"
	"garen-bot/internal/ratelimit"
	"garen-bot/internal/stats"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const riotTokenHeader = "X-Riot-Token"

// Doer is the part of *fasthttp.Client the retrying client needs.
type Doer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

type Throttle interface {
	Acquire(ctx context.Context) error
}

// Client issues GET requests against the Riot API with throttling, a per-attempt
// timeout and the retry policy shared by every endpoint.
type Client struct {
	apiKey      string
	doer        Doer
	throttle    Throttle
	timeout     time.Duration
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
	recorder    stats.Recorder
	logger      zerolog.Logger

	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

// RateLimitInfo mirrors the rate limit headers of the last Riot response.
type RateLimitInfo struct {
	AppLimit    string    `json:"app_limit"`
	AppCount    string    `json:"app_count"`
	MethodLimit string    `json:"method_limit"`
	MethodCount string    `json:"method_count"`
	LimitType   string    `json:"limit_type,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ClientOption func(*Client)

func WithDoer(d Doer) ClientOption {
	return func(c *Client) { c.doer = d }
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *Client) { c.sleep = sleep }
}

func WithRecorder(r stats.Recorder) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

func NewClient(apiKey string, throttle Throttle, timeout time.Duration, maxAttempts int, logger zerolog.Logger, opts ...ClientOption) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	c := &Client{
		apiKey:   apiKey,
		throttle: throttle,
		doer: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		timeout:     timeout,
		maxAttempts: maxAttempts,
		sleep:       ratelimit.Sleep,
		recorder:    stats.Nop{},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig is the fx constructor.
func NewClientFromConfig(cfg *config.Config, limiter *ratelimit.Limiter, recorder stats.Recorder, logger zerolog.Logger) *Client {
	return NewClient(cfg.RiotAPIKey, limiter, cfg.RequestTimeout, cfg.MaxRetries, logger, WithRecorder(recorder))
}

func (c *Client) RateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *Client) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if v := string(resp.Header.Peek("X-App-Rate-Limit")); v != "" {
		c.rateLimit.AppLimit = v
	}
	if v := string(resp.Header.Peek("X-App-Rate-Limit-Count")); v != "" {
		c.rateLimit.AppCount = v
	}
	if v := string(resp.Header.Peek("X-Method-Rate-Limit")); v != "" {
		c.rateLimit.MethodLimit = v
	}
	if v := string(resp.Header.Peek("X-Method-Rate-Limit-Count")); v != "" {
		c.rateLimit.MethodCount = v
	}
	c.rateLimit.LimitType = string(resp.Header.Peek("X-Rate-Limit-Type"))
	c.rateLimit.UpdatedAt = time.Now()
}

type requestOptions struct {
	// static requests go to Data Dragon or the public site: no token, no Riot throttle.
	static bool
	accept string
}

// doRequest returns (nil, false, nil) when the resource does not exist.
func doRequest[T any](ctx context.Context, c *Client, endpoint, url string) (*T, bool, error) {
	return doRequestWith[T](ctx, c, endpoint, url, requestOptions{})
}

func doRequestWith[T any](ctx context.Context, c *Client, endpoint, url string, opts requestOptions) (*T, bool, error) {
	raw, found, err := c.get(ctx, endpoint, url, opts)
	if err != nil || !found {
		return nil, found, err
	}

	var result T
	if err := sonic.Unmarshal(raw, &result); err != nil {
		return nil, false, errors.Wrapf(err, "decode %s response", endpoint)
	}
	return &result, true, nil
}

func (c *Client) get(ctx context.Context, endpoint, url string, opts requestOptions) ([]byte, bool, error) {
	// one throttle slot per logical request; retries do not queue again
	if !opts.static && c.throttle != nil {
		if err := c.throttle.Acquire(ctx); err != nil {
			return nil, false, errors.Wrapf(err, "%s: waiting for rate limiter", endpoint)
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.URI().DisablePathNormalizing = true
	req.Header.SetMethod(fasthttp.MethodGet)
	accept := opts.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set(fasthttp.HeaderAccept, accept)
	if !opts.static {
		req.Header.Set(riotTokenHeader, c.apiKey)
	}

	log := c.logger.With().Str("endpoint", endpoint).Logger()

	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, false, errors.Wrapf(err, "%s", endpoint)
		}

		resp.Reset()
		err := c.doer.DoTimeout(req, resp, c.attemptTimeout(ctx))
		if err != nil {
			attempt++
			timedOut := errors.Is(err, fasthttp.ErrTimeout)
			if attempt >= c.maxAttempts {
				if timedOut {
					c.record(ctx, endpoint, stats.OutcomeTimeout)
					log.Error().Int("attempts", attempt).Msg("request timed out after retries")
					return nil, false, errors.Mark(errors.Wrapf(err, "%s: timed out after %d attempts", endpoint, attempt), ErrTimeout)
				}
				c.record(ctx, endpoint, stats.OutcomeTransportError)
				log.Error().Err(err).Int("attempts", attempt).Msg("request failed after retries")
				return nil, false, errors.Mark(errors.Wrapf(err, "%s: network error after %d attempts", endpoint, attempt), ErrTransport)
			}

			c.record(ctx, endpoint, stats.OutcomeRetry)
			log.Warn().
				Err(err).
				Bool("timeout", timedOut).
				Int("attempt", attempt).
				Int("max_attempts", c.maxAttempts).
				Dur("backoff", constants.TransientRetryDelay).
				Msg("request failed, retrying")
			if err := c.sleep(ctx, constants.TransientRetryDelay); err != nil {
				return nil, false, errors.Wrapf(err, "%s: retry backoff", endpoint)
			}
			continue
		}

		if !opts.static {
			c.updateRateLimit(resp)
		}

		status := resp.StatusCode()
		switch {
		case status == fasthttp.StatusTooManyRequests:
			wait := parseRetryAfter(resp.Header.Peek(fasthttp.HeaderRetryAfter))
			c.record(ctx, endpoint, stats.OutcomeRateLimited)
			log.Warn().
				Dur("retry_after", wait).
				Str("limit_type", string(resp.Header.Peek("X-Rate-Limit-Type"))).
				Msg("rate limited by riot api, waiting")
			// 429s do not consume an attempt; only the context bounds this loop
			if err := c.sleep(ctx, wait); err != nil {
				return nil, false, errors.Mark(errors.Wrapf(err, "%s: waiting out 429", endpoint), ErrRateLimited)
			}
			continue

		case status == fasthttp.StatusNotFound:
			c.record(ctx, endpoint, stats.OutcomeNotFound)
			log.Debug().Msg("resource not found")
			return nil, false, nil

		case status >= 200 && status < 300:
			c.record(ctx, endpoint, stats.OutcomeOK)
			return append([]byte(nil), resp.Body()...), true, nil

		default:
			attempt++
			body := abbreviate(resp.Body())
			if attempt >= c.maxAttempts {
				c.record(ctx, endpoint, stats.OutcomeUpstreamError)
				log.Error().Int("status", status).Str("body", body).Int("attempts", attempt).Msg("riot api error after retries")
				return nil, false, &UpstreamError{Endpoint: endpoint, StatusCode: status, Body: body}
			}

			backoff := time.Duration(1<<(attempt-1)) * time.Second
			c.record(ctx, endpoint, stats.OutcomeRetry)
			log.Warn().
				Int("status", status).
				Str("body", body).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("riot api error, retrying")
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, false, errors.Wrapf(err, "%s: retry backoff", endpoint)
			}
		}
	}
}

// attemptTimeout is the configured budget, shortened to the context deadline.
func (c *Client) attemptTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

func (c *Client) record(ctx context.Context, endpoint string, outcome stats.Outcome) {
	if err := c.recorder.Record(ctx, stats.Event{Endpoint: endpoint, Outcome: outcome, At: time.Now()}); err != nil {
		c.logger.Debug().Err(err).Msg("failed to record request stats")
	}
}

func parseRetryAfter(raw []byte) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || secs < 0 {
		return constants.DefaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

func abbreviate(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
