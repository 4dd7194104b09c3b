package http

import (
	"context"
	"math"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RequestLimiter bounds the request rate and the number of in-flight requests
// to the Upag API. A zero value limit disables that dimension.
type RequestLimiter struct {
	rate  *rate.Limiter
	slots *semaphore.Weighted
	max   int64
}

// NewRequestLimiter returns a limiter allowing ratePerSecond requests per second
// (burst rounded up) and at most maxConcurrent requests in flight. It returns nil
// when both limits are disabled.
func NewRequestLimiter(ratePerSecond float64, maxConcurrent int) *RequestLimiter {
	if ratePerSecond <= 0 && maxConcurrent <= 0 {
		return nil
	}

	l := &RequestLimiter{}
	if ratePerSecond > 0 {
		burst := int(math.Ceil(ratePerSecond))
		l.rate = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	if maxConcurrent > 0 {
		l.max = int64(maxConcurrent)
		l.slots = semaphore.NewWeighted(l.max)
	}
	return l
}

// Acquire blocks until the request may proceed or ctx is done. The returned
// release func must be called once the round trip finishes. A nil limiter
// admits every request.
func (l *RequestLimiter) Acquire(ctx context.Context) (release func(), err error) {
	if l == nil {
		return func() {}, nil
	}

	if l.slots != nil {
		if err := l.slots.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}

	if l.rate != nil {
		if err := l.rate.Wait(ctx); err != nil {
			if l.slots != nil {
				l.slots.Release(1)
			}
			return nil, err
		}
	}

	return func() {
		if l.slots != nil {
			l.slots.Release(1)
		}
	}, nil
}

// MaxConcurrent returns the in-flight limit, or 0 when unlimited.
func (l *RequestLimiter) MaxConcurrent() int {
	if l == nil {
		return 0
	}
	return int(l.max)
}
