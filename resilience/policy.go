package resilience

import (
	"context"
	"time"
)

// Policy composes a breaker, a retry and a per-attempt timeout.
type Policy struct {
	breaker *Breaker
	retry   *Retry
	timeout time.Duration
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// NewPolicy creates a new policy. Without options it just calls op.
func NewPolicy(opts ...PolicyOption) *Policy {
	p := &Policy{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithBreaker adds a circuit breaker.
func WithBreaker(b *Breaker) PolicyOption {
	return func(p *Policy) {
		p.breaker = b
	}
}

// WithRetry adds retry logic.
func WithRetry(r *Retry) PolicyOption {
	return func(p *Policy) {
		p.retry = r
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) PolicyOption {
	return func(p *Policy) {
		p.timeout = d
	}
}

// Breaker returns the configured breaker, or nil.
func (p *Policy) Breaker() *Breaker {
	return p.breaker
}

// Execute runs op through the policy.
//
// The breaker sees the result of the whole retry sequence, so one failed
// publish cycle counts as one failure however many attempts it took.
func (p *Policy) Execute(ctx context.Context, op func(context.Context) error) error {
	attempt := op
	if p.timeout > 0 {
		inner := attempt
		attempt = func(ctx context.Context) error {
			return WithinTimeout(ctx, p.timeout, inner)
		}
	}

	call := attempt
	if p.retry != nil {
		call = func(ctx context.Context) error {
			return p.retry.Execute(ctx, attempt)
		}
	}

	if p.breaker != nil {
		return p.breaker.Execute(ctx, call)
	}
	return call(ctx)
}
