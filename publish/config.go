package publish

import (
	"time"

	"github.com/jonwraymond/healthops/health"
)

// Defaults applied by Config.
const (
	DefaultDelay   = 5 * time.Second
	DefaultPeriod  = 30 * time.Second
	DefaultTimeout = 30 * time.Second
)

// Config configures the publisher loop.
type Config struct {
	// Delay before the first publish. Default: 5s
	Delay time.Duration

	// Period between publishes. Default: 30s
	Period time.Duration

	// Timeout bounds each probe run and each sink delivery. Default: 30s
	Timeout time.Duration

	// Predicate selects the published probes. Default: all probes.
	Predicate health.Predicate
}

// DefaultConfig returns the default publisher configuration.
func DefaultConfig() Config {
	return Config{
		Delay:     DefaultDelay,
		Period:    DefaultPeriod,
		Timeout:   DefaultTimeout,
		Predicate: health.All(),
	}
}

// withDefaults fills unset fields. A negative Delay publishes immediately.
func (c Config) withDefaults() Config {
	if c.Delay == 0 {
		c.Delay = DefaultDelay
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.Period <= 0 {
		c.Period = DefaultPeriod
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Predicate == nil {
		c.Predicate = health.All()
	}
	return c
}
