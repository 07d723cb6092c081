package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPolicy_Empty(t *testing.T) {
	p := NewPolicy()
	if err := p.Execute(context.Background(), failing); !errors.Is(err, errSink) {
		t.Errorf("Execute() error = %v, want errSink", err)
	}
}

func TestPolicy_RetrySequenceCountsOnce(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 2, Cooldown: time.Minute})
	p := NewPolicy(
		WithBreaker(b),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
	)

	calls := 0
	_ = p.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return errSink
	})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if b.Failures() != 1 {
		t.Errorf("breaker failures = %d, want 1", b.Failures())
	}
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestPolicy_TimeoutPerAttempt(t *testing.T) {
	p := NewPolicy(
		WithTimeout(10*time.Millisecond),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})),
	)

	var calls atomic.Int32
	err := p.Execute(context.Background(), func(ctx context.Context) error {
		calls.Add(1)
		time.Sleep(100 * time.Millisecond)
		return nil
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}
