package api

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUpstream matches *UpstreamError: a non-2xx status that outlived every retry.
	ErrUpstream = errors.New("riot api upstream error")
	// ErrTimeout marks a request whose attempts all timed out.
	ErrTimeout = errors.New("riot api timeout")
	// ErrTransport marks network-level failures (dial, reset, DNS) after retries.
	ErrTransport = errors.New("riot api transport failure")
	// ErrRateLimited marks a request abandoned while waiting out a 429.
	ErrRateLimited = errors.New("riot api rate limited")
)

type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: api error %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: api error %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// IsTransient reports whether err is a failure the caller should present as
// "try again later" rather than a bug or a bad request.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUpstream) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrRateLimited)
}
