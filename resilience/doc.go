// Package resilience provides the failure-containment patterns used around
// probe execution and report delivery.
//
// # Patterns
//
//   - Bulkhead: bounds how many probes of a run execute at once.
//
//   - Circuit Breaker: stops calling a sink that keeps failing and retries
//     it after a cooldown.
//
//   - Retry: re-attempts a failed delivery with exponential backoff.
//
//   - Timeout: bounds a delivery even if the sink ignores its context.
//
// # Usage
//
// Patterns compose into a Policy:
//
//	policy := resilience.NewPolicy(
//	    resilience.WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{
//	        FailureThreshold: 5,
//	        Cooldown:         time.Minute,
//	    })),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
//	        MaxAttempts:  3,
//	        InitialDelay: 200 * time.Millisecond,
//	    })),
//	    resilience.WithTimeout(5*time.Second),
//	)
//
//	err := policy.Execute(ctx, func(ctx context.Context) error {
//	    return sink.Publish(ctx, report)
//	})
package resilience
