package ai

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// errEmptyResponse marks a 2xx response without usable content. Never retried.
var errEmptyResponse = errors.New("empty response")

// retryPolicy retries transient provider failures with exponential backoff and jitter.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func defaultRetryPolicy(maxRetries int) retryPolicy {
	return retryPolicy{
		maxRetries: maxRetries,
		baseDelay:  250 * time.Millisecond,
		maxDelay:   8 * time.Second,
	}
}

// do runs op until it succeeds, fails permanently, or the retry budget is spent.
// onRetry is called before each retry with the 1-based retry number.
func (p retryPolicy) do(ctx context.Context, op func(ctx context.Context) error, onRetry func(retry int, err error)) error {
	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if attempt >= p.maxRetries || !isTransient(ctx, err) {
			return err
		}
		if onRetry != nil {
			onRetry(attempt+1, err)
		}

		timer := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.baseDelay << attempt
	if d <= 0 || d > p.maxDelay {
		d = p.maxDelay
	}
	if d <= 1 {
		return d
	}
	half := d / 2
	return half + rand.N(half)
}

// isTransient reports whether err is worth retrying: network failures,
// per-attempt timeouts, 429 and 5xx. Authentication and request errors fail fast.
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if status := statusCode(err); status != 0 {
		return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
	}
	if errors.Is(err, errEmptyResponse) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// statusCode extracts the HTTP status of a go-openai error, or 0
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
