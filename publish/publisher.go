package publish

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

// State is the lifecycle state of a Publisher.
type State int32

const (
	// StateIdle is the state before Run.
	StateIdle State = iota
	// StateRunning is the state while Run loops.
	StateRunning
	// StateStopped is the state after Run returned.
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type sinkEntry struct {
	sink   Sink
	policy *resilience.Policy
}

// Publisher periodically runs probes and forwards reports to sinks.
type Publisher struct {
	reg     *health.Registry
	exec    *health.Executor
	config  Config
	sinks   []sinkEntry
	logger  observe.Logger
	metrics observe.Metrics
	state   atomic.Int32
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithSink adds a sink. A non-nil policy guards every delivery to it.
func WithSink(s Sink, policy *resilience.Policy) Option {
	return func(p *Publisher) {
		if s == nil {
			return
		}
		p.sinks = append(p.sinks, sinkEntry{sink: s, policy: policy})
	}
}

// WithLogger sets the logger receiving sink failures.
func WithLogger(l observe.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the recorder for sink deliveries.
func WithMetrics(m observe.Metrics) Option {
	return func(p *Publisher) {
		if m != nil {
			p.metrics = m
		}
	}
}

// New creates a publisher. Zero config fields take their defaults.
func New(reg *health.Registry, exec *health.Executor, config Config, opts ...Option) *Publisher {
	p := &Publisher{
		reg:     reg,
		exec:    exec,
		config:  config.withDefaults(),
		logger:  observe.NopLogger(),
		metrics: observe.NopMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current lifecycle state.
func (p *Publisher) State() State {
	return State(p.state.Load())
}

// Config returns the effective configuration.
func (p *Publisher) Config() Config {
	return p.config
}

// Run publishes after Config.Delay and then every Config.Period until ctx
// is canceled. It returns nil on cancellation and ErrAlreadyRunning if the
// publisher was started before.
func (p *Publisher) Run(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyRunning
	}
	defer p.state.Store(int32(StateStopped))

	p.logger.Info(ctx, "publisher started",
		observe.F("delay", p.config.Delay.String()),
		observe.F("period", p.config.Period.String()),
		observe.F("sinks", len(p.sinks)),
	)
	defer p.logger.Info(context.WithoutCancel(ctx), "publisher stopped")

	timer := time.NewTimer(p.config.Delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		_, _ = p.PublishOnce(ctx)
		timer.Reset(p.config.Period)
	}
}

// PublishOnce runs one publish cycle. The returned error joins every
// *SinkPublishError of the cycle; it is informational, as failures are
// already logged and counted.
func (p *Publisher) PublishOnce(ctx context.Context) (health.Report, error) {
	report := p.exec.RunSelected(ctx, p.reg, p.config.Predicate, p.config.Timeout)

	if len(p.sinks) == 0 {
		return report, nil
	}

	errs := make([]error, len(p.sinks))
	var wg sync.WaitGroup
	for i, entry := range p.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = p.deliver(ctx, entry, report)
		}()
	}
	wg.Wait()

	return report, errors.Join(errs...)
}

func (p *Publisher) deliver(ctx context.Context, entry sinkEntry, report health.Report) error {
	name := entry.sink.Name()

	publish := func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrSinkPanic, r)
			}
		}()
		return entry.sink.Publish(ctx, report)
	}

	guarded := publish
	if entry.policy != nil {
		guarded = func(ctx context.Context) error {
			return entry.policy.Execute(ctx, publish)
		}
	}

	// A sink that ignores its context is abandoned at the deadline or on
	// cancellation so one hung delivery cannot stall the loop.
	err := resilience.WithinTimeout(ctx, p.config.Timeout, guarded)

	p.metrics.RecordSink(ctx, name, err)
	if err == nil {
		return nil
	}

	perr := &SinkPublishError{Sink: name, Err: err}
	p.logger.Error(ctx, "sink publish failed",
		observe.F("sink", name),
		observe.F("status", report.Status.String()),
		observe.F("error", err.Error()),
	)
	return perr
}
