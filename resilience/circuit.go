package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the breaker state.
type State int

const (
	// StateClosed lets calls through.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown elapses.
	StateOpen
	// StateHalfOpen lets a single trial call through.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	// Default: 5
	FailureThreshold int

	// Cooldown is how long the circuit stays open before a trial call.
	// Default: 30 seconds
	Cooldown time.Duration

	// OnStateChange is called, under the breaker lock, on every transition.
	OnStateChange func(from, to State)
}

// Breaker implements the circuit breaker pattern.
type Breaker struct {
	config BreakerConfig
	now    func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
}

// NewBreaker creates a new circuit breaker.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}

	return &Breaker{config: config, now: time.Now}
}

// Execute runs op unless the circuit is open.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := op(ctx)
	b.record(err)
	return err
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.trial = false
	b.transition(StateClosed)
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.stateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.trial {
			return ErrCircuitOpen
		}
		b.trial = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		b.trial = false
		b.transition(StateClosed)
		return
	}

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.config.FailureThreshold {
		b.trial = false
		b.openedAt = b.now()
		b.transition(StateOpen)
	}
}

func (b *Breaker) stateLocked() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.config.Cooldown {
		b.trial = false
		b.transition(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	if from != to && b.config.OnStateChange != nil {
		b.config.OnStateChange(from, to)
	}
}
