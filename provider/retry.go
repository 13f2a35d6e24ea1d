package provider

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/BaSui01/councilflow/types"
)

// RetryPolicy configures how failed invocations are repeated.
type RetryPolicy struct {
	MaxRetries   int           // retries after the first attempt; 0 disables retrying
	InitialDelay time.Duration // delay before the first retry
	MaxDelay     time.Duration // upper bound on the backoff delay
	Multiplier   float64       // exponential growth factor
	Jitter       bool          // randomize each delay by +-25%
	OnRetry      func(attempt int, err error, delay time.Duration)
}

// DefaultRetryPolicy matches the orchestrator default: one retry with
// a short backoff, so a transient provider fault costs well under a
// second before the round records a gap.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxRetries:   1,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// normalize clamps nonsensical policy values to usable ones.
func (p *RetryPolicy) normalize() {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 200 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 2 * time.Second
	}
	if p.Multiplier < 1.0 {
		p.Multiplier = 2.0
	}
}

// delay computes the backoff before the given retry attempt.
func (p *RetryPolicy) delay(attempt int) time.Duration {
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter {
		jitter := d * 0.25
		d = d + (rand.Float64()*2-1)*jitter
	}
	if d < float64(p.InitialDelay) {
		d = float64(p.InitialDelay)
	}
	return time.Duration(d)
}

// Retry repeats failed invocations with exponential backoff. A nil
// policy uses DefaultRetryPolicy. The last error is returned unchanged
// once retries are exhausted, so an inner PROVIDER_TIMEOUT keeps its
// code.
//
// Structured errors declare their own retryability; anything else is
// assumed transient and retried. A done context always stops the loop.
func Retry(policy *RetryPolicy) Middleware {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}
	policy.normalize()

	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (*types.Perspective, error) {
			var lastErr error

			for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
				if attempt > 0 {
					delay := policy.delay(attempt)
					if policy.OnRetry != nil {
						policy.OnRetry(attempt, lastErr, delay)
					}
					select {
					case <-ctx.Done():
						return nil, types.NewError(types.ErrProviderFailed, "retry wait aborted").
							WithCause(ctx.Err()).
							WithRole(req.Role).
							WithRound(req.Round)
					case <-time.After(delay):
					}
				}

				p, err := next(ctx, req)
				if err == nil {
					return p, nil
				}
				lastErr = err

				if !shouldRetry(ctx, err) {
					return nil, err
				}
			}
			return nil, lastErr
		}
	}
}

// shouldRetry reports whether repeating the call could change the
// outcome. A done context means the caller has moved on.
func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var e *types.Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return true
}
