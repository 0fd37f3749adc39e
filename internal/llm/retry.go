package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RetryPolicy retries calls that fail with a retryable API status, doubling
// the delay after each attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(status int) bool

	// Sleep waits between attempts; nil uses a timer that honors ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy makes 5 attempts starting at a 1s delay and retries
// rate limiting and server errors.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		Retryable:   RetryableStatus,
	}
}

// RetryableStatus reports 429 and 5xx as transient.
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.Retryable == nil {
		p.Retryable = d.Retryable
	}
	if p.Sleep == nil {
		p.Sleep = sleepCtx
	}
	return p
}

// Do calls fn until it succeeds, fails with a non-retryable error or the
// attempts run out. Only *APIError values with a retryable status are
// retried.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	p = p.withDefaults()
	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = fn(attempt)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !p.Retryable(apiErr.StatusCode) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}
		if serr := p.Sleep(ctx, delay); serr != nil {
			return serr
		}
		delay *= 2
	}
	return fmt.Errorf("giving up after %d attempts: %w", p.MaxAttempts, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
