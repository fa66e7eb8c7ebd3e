package fetcher

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds retries of transport failures.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first. Zero disables
	// retrying.
	MaxRetries uint64
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration
	// MaxInterval caps the delay between retries.
	MaxInterval time.Duration
}

// DefaultRetryPolicy returns a policy that never retries.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      0,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Retrying wraps a Fetcher and retries transport failures with exponential
// backoff. Bad status responses are returned immediately.
type Retrying struct {
	next   Fetcher
	policy RetryPolicy
	logger *zap.Logger
}

// NewRetrying wraps next with the given policy.
func NewRetrying(next Fetcher, policy RetryPolicy, logger *zap.Logger) *Retrying {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{next: next, policy: policy, logger: logger}
}

// Fetch calls the wrapped fetcher, retrying only transport failures.
func (r *Retrying) Fetch(ctx context.Context, url string) (*Response, error) {
	if r.policy.MaxRetries == 0 {
		return r.next.Fetch(ctx, url)
	}

	var resp *Response
	operation := func() error {
		var err error
		resp, err = r.next.Fetch(ctx, url)
		if err == nil {
			return nil
		}
		if !IsTransport(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		r.logger.Warn("Retrying fetch after transport failure",
			zap.String("url", url),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, r.backOff(ctx), notify); err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *Retrying) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		b.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.MaxInterval > 0 {
		b.MaxInterval = r.policy.MaxInterval
	}
	// Attempts are bounded by count, not elapsed time
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, r.policy.MaxRetries), ctx)
}
