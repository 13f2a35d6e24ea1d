package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/councilflow/types"
)

// Handler processes a request and returns a perspective.
type Handler func(ctx context.Context, req Request) (*types.Perspective, error)

// Middleware wraps a handler with additional behavior.
type Middleware func(next Handler) Handler

// Chain represents a middleware chain.
type Chain struct {
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewChain creates a new middleware chain.
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{middlewares: middlewares}
}

// Use adds middleware to the chain.
func (c *Chain) Use(m Middleware) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, m)
	return c
}

// Then wraps a handler with all middleware. The first middleware added
// becomes the outermost layer.
func (c *Chain) Then(h Handler) Handler {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h
}

// Wrap composes the chain over a provider.
func (c *Chain) Wrap(p Provider) Provider {
	return Func(c.Then(p.Invoke))
}

// Len returns the number of middleware.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.middlewares)
}

// Timeout bounds each invocation. A deadline hit inside the wrapped
// handler is reported as a retryable PROVIDER_TIMEOUT.
func Timeout(d time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (*types.Perspective, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			p, err := next(ctx, req)
			if err != nil && errors.Is(err, context.DeadlineExceeded) {
				return nil, types.NewError(types.ErrProviderTimeout,
					fmt.Sprintf("no perspective within %s", d)).
					WithCause(err).
					WithRetryable(true).
					WithRole(req.Role).
					WithRound(req.Round)
			}
			return p, err
		}
	}
}

// RateLimit blocks each invocation until the shared limiter grants a
// token. All providers wrapped with the same limiter draw from the
// same budget.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (*types.Perspective, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, types.NewError(types.ErrProviderFailed, "rate limit wait aborted").
					WithCause(err).
					WithRole(req.Role).
					WithRound(req.Round)
			}
			return next(ctx, req)
		}
	}
}

// Validate rejects malformed provider output and stamps the
// authoritative role and round from the request. Provider output is
// untrusted; whatever the provider wrote into those fields is
// overwritten. Validation failures are provider defects and are never
// retryable.
func Validate() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (*types.Perspective, error) {
			p, err := next(ctx, req)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, types.NewError(types.ErrInvalidPerspective, "provider returned no perspective").
					WithRole(req.Role).
					WithRound(req.Round)
			}
			p.Role = req.Role
			p.Round = req.Round
			if verr := p.Validate(); verr != nil {
				if e, ok := verr.(*types.Error); ok {
					return nil, e.WithRound(req.Round)
				}
				return nil, verr
			}
			return p, nil
		}
	}
}

// Recover converts a panicking provider into an error so one bad
// provider cannot take the session down. A panic is treated as a
// provider defect, not a transient fault, and is not retried.
func Recover() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (p *types.Perspective, err error) {
			defer func() {
				if r := recover(); r != nil {
					p = nil
					err = types.NewError(types.ErrProviderFailed,
						fmt.Sprintf("provider panicked: %v", r)).
						WithRole(req.Role).
						WithRound(req.Round)
				}
			}()
			return next(ctx, req)
		}
	}
}

// Logging records each invocation outcome with timing.
func Logging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("component", "provider"))

	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (*types.Perspective, error) {
			start := time.Now()
			p, err := next(ctx, req)
			if err != nil {
				log.Warn("provider call failed",
					zap.String("role", string(req.Role)),
					zap.Int("round", req.Round),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err),
				)
				return nil, err
			}
			log.Debug("provider call completed",
				zap.String("role", string(req.Role)),
				zap.Int("round", req.Round),
				zap.Duration("duration", time.Since(start)),
				zap.Float64("confidence", p.Confidence),
			)
			return p, nil
		}
	}
}
