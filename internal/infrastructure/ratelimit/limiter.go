// Package ratelimit paces outbound storefront API calls so the bridge stays
// under the storefront's request-rate ceiling. Pacing lives here, decoupled
// from sync business logic, so tests can swap in an unlimited limiter.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter gates outbound requests
type Limiter interface {
	// Acquire blocks until a request slot is available or the context ends
	Acquire(ctx context.Context) error
}

// TokenBucket implements Limiter with a token bucket. Safe for concurrent use.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a limiter targeting qps sustained requests per second.
// A burst of 0 defaults to max(1, int(qps)).
func NewTokenBucket(qps float64, burst int) *TokenBucket {
	if qps <= 0 {
		qps = 1
	}
	if burst <= 0 {
		burst = max(1, int(qps))
	}
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(qps), burst)}
}

// Acquire blocks until a slot is available or the context is cancelled
func (t *TokenBucket) Acquire(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Rate returns the configured sustained rate in requests per second
func (t *TokenBucket) Rate() float64 {
	return float64(t.limiter.Limit())
}

// Unlimited returns a limiter that never blocks. For tests and debug paths.
func Unlimited() Limiter {
	return unlimited{}
}

type unlimited struct{}

func (unlimited) Acquire(ctx context.Context) error {
	return ctx.Err()
}
