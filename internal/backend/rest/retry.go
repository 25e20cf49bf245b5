package rest

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/googleapi"
)

// invokeIdempotent runs call with up to c.retries extra attempts.
// Only GET and DELETE go through here: POST has no idempotency key
// and PUT is left single-attempt like POST.
func (c *Client) invokeIdempotent(ctx context.Context, call func(ctx context.Context) error) error {
	if c.retries == 0 {
		return call(ctx)
	}

	attempt := 0
	return gax.Invoke(ctx, func(ctx context.Context, _ gax.CallSettings) error {
		attempt++
		err := call(ctx)
		if err != nil {
			c.log.Debug("attempt failed", "attempt", attempt, "err", err)
		}
		return err
	}, gax.WithRetry(func() gax.Retryer {
		return &boundedRetryer{backoff: c.backoff, max: c.retries}
	}))
}

// boundedRetryer retries retryable errors at most max times, pausing
// with gax's jittered exponential backoff.
type boundedRetryer struct {
	backoff  gax.Backoff
	max      int
	attempts int
}

func (r *boundedRetryer) Retry(err error) (time.Duration, bool) {
	if r.attempts >= r.max || !retryable(err) {
		return 0, false
	}
	r.attempts++
	return r.backoff.Pause(), true
}

// retryable reports whether another attempt could succeed: transport
// failures, 5xx and 429. Client errors and malformed bodies are final.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests
	}

	var de *decodeError
	if errors.As(err, &de) {
		return false
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
