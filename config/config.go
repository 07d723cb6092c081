package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/jonwraymond/healthops/auth"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// Probe types.
const (
	ProbeMemory   = "memory"
	ProbePostgres = "postgres"
	ProbeRedis    = "redis"
	ProbeKafka    = "kafka"
	ProbeHTTP     = "http"
)

// Sink types.
const (
	SinkLog     = "log"
	SinkMetrics = "metrics"
	SinkWebhook = "webhook"
	SinkKafka   = "kafka"
	SinkRedis   = "redis"
)

// ValidProbeTypes lists the probe types Build understands.
var ValidProbeTypes = []string{ProbeMemory, ProbePostgres, ProbeRedis, ProbeKafka, ProbeHTTP}

// ValidSinkTypes lists the sink types Build understands.
var ValidSinkTypes = []string{SinkLog, SinkMetrics, SinkWebhook, SinkKafka, SinkRedis}

// Config is the root of the healthd configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	HTTP      HTTPConfig      `yaml:"http"`
	Status    StatusConfig    `yaml:"status"`
	Readiness ReadinessConfig `yaml:"readiness"`
	Publisher PublisherConfig `yaml:"publisher"`
	Startup   StartupConfig   `yaml:"startup"`
	Probes    []ProbeConfig   `yaml:"probes"`
	Sinks     []SinkConfig    `yaml:"sinks"`
	Observe   observe.Config  `yaml:"observe"`
	Auth      auth.Config     `yaml:"auth"`
	Secrets   SecretsConfig   `yaml:"secrets"`
}

// ServiceConfig identifies the monitored service.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// HTTPConfig configures the exposition server.
type HTTPConfig struct {
	// Addr is the listen address. Default: ":8080"
	Addr string `yaml:"addr"`

	// MetricsPath serves Prometheus metrics when the metrics exporter is
	// "prometheus". Default: "/metrics"
	MetricsPath string `yaml:"metrics_path"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StatusConfig configures /status and the shared executor.
type StatusConfig struct {
	// Tags selects the reported probes: any probe carrying one of them.
	// Empty reports every probe.
	Tags []string `yaml:"tags"`

	// Timeout is the run budget. Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxConcurrent bounds concurrently running probes per run. 0 = unbounded.
	MaxConcurrent int `yaml:"max_concurrent"`

	// Cache is "", "memory" or "redis".
	Cache string `yaml:"cache"`

	// CacheTTL is how long a rendered document is served from the cache.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// RedisURL locates the cache when Cache is "redis".
	RedisURL string `yaml:"redis_url"`
}

// ReadinessConfig configures /health/ready.
type ReadinessConfig struct {
	// Tag selects readiness probes. Default: "ready"
	Tag string `yaml:"tag"`

	// Timeout is the run budget. Default: the status timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// PublisherConfig configures the periodic publisher.
type PublisherConfig struct {
	Enabled bool          `yaml:"enabled"`
	Delay   time.Duration `yaml:"delay"`
	Period  time.Duration `yaml:"period"`
	Timeout time.Duration `yaml:"timeout"`

	// Tags selects the published probes, as for status. Empty = all.
	Tags []string `yaml:"tags"`
}

// StartupConfig configures the startup gate.
type StartupConfig struct {
	Enabled bool `yaml:"enabled"`

	// Name of the gate probe. Default: "startup"
	Name string `yaml:"name"`

	// Delay after which the gate completes. Default: 0 (immediately)
	Delay time.Duration `yaml:"delay"`

	// Tags of the gate probe. Default: ["ready"]
	Tags []string `yaml:"tags"`
}

// ProbeConfig describes one probe. Type-specific fields are ignored by
// other types.
type ProbeConfig struct {
	Name          string        `yaml:"name"`
	Type          string        `yaml:"type"`
	Tags          []string      `yaml:"tags"`
	Timeout       time.Duration `yaml:"timeout"`
	DegradedAfter time.Duration `yaml:"degraded_after"`

	// postgres
	DSN   string `yaml:"dsn"`
	Query string `yaml:"query"`

	// redis, http
	URL string `yaml:"url"`

	// kafka
	Brokers  []string `yaml:"brokers"`
	ClientID string   `yaml:"client_id"`

	// memory
	WarningThreshold  float64 `yaml:"warning_threshold"`
	CriticalThreshold float64 `yaml:"critical_threshold"`
	MaxAlloc          uint64  `yaml:"max_alloc"`
}

// SinkConfig describes one publisher sink.
type SinkConfig struct {
	Type string `yaml:"type"`

	// Name overrides the sink name (webhook only).
	Name string `yaml:"name"`

	// webhook: target URL. redis: server URL.
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`

	// kafka
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`

	// redis
	Key     string        `yaml:"key"`
	Channel string        `yaml:"channel"`
	TTL     time.Duration `yaml:"ttl"`

	// Delivery policy.
	Timeout time.Duration  `yaml:"timeout"`
	Retry   *RetryConfig   `yaml:"retry"`
	Breaker *BreakerConfig `yaml:"breaker"`
}

// RetryConfig configures sink retries.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// BreakerConfig configures a sink circuit breaker.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
}

// SecretsConfig configures secret providers used during loading.
type SecretsConfig struct {
	// Strict rejects secret references that resolve to an empty value.
	Strict bool `yaml:"strict"`

	// Providers maps a provider name to its settings, e.g.
	// {"file": {"dir": "/run/secrets"}}. "env" is always available.
	Providers map[string]map[string]any `yaml:"providers"`
}

// Default returns a configuration with every default applied and no probes.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.MetricsPath == "" {
		c.HTTP.MetricsPath = "/metrics"
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Status.Timeout <= 0 {
		c.Status.Timeout = health.DefaultTimeout
	}
	if c.Readiness.Tag == "" {
		c.Readiness.Tag = health.TagReady
	}
	if c.Readiness.Timeout <= 0 {
		c.Readiness.Timeout = c.Status.Timeout
	}
	if c.Startup.Name == "" {
		c.Startup.Name = "startup"
	}
	if c.Observe.ServiceName == "" {
		c.Observe.ServiceName = c.Service.Name
	}
	if c.Observe.Version == "" {
		c.Observe.Version = c.Service.Version
	}
	if c.Observe.Logging.Level == "" {
		c.Observe.Logging.Level = "info"
	}
}

// Validate checks the configuration. Defaults should be applied first.
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return ErrMissingServiceName
	}

	if c.Status.MaxConcurrent < 0 {
		return invalid("status.max_concurrent", "must not be negative, got %d", c.Status.MaxConcurrent)
	}
	switch c.Status.Cache {
	case "", "memory":
	case "redis":
		if c.Status.RedisURL == "" {
			return invalid("status.redis_url", "required when cache is redis")
		}
	default:
		return fieldErr("status.cache", fmt.Errorf("%w: %q", ErrUnknownCache, c.Status.Cache))
	}
	if c.Status.Cache != "" && c.Status.CacheTTL <= 0 {
		return invalid("status.cache_ttl", "must be positive when a cache is configured")
	}

	if c.Publisher.Enabled && len(c.Sinks) == 0 {
		return invalid("sinks", "publisher enabled without sinks")
	}
	if c.Startup.Delay < 0 {
		return invalid("startup.delay", "must not be negative")
	}

	seen := make(map[string]struct{}, len(c.Probes)+1)
	if c.Startup.Enabled {
		seen[c.Startup.Name] = struct{}{}
	}
	for i, p := range c.Probes {
		field := fmt.Sprintf("probes[%d]", i)
		if p.Name == "" {
			return invalid(field+".name", "required")
		}
		if _, dup := seen[p.Name]; dup {
			return fieldErr(field+".name", fmt.Errorf("%w: %q", ErrDuplicateProbe, p.Name))
		}
		seen[p.Name] = struct{}{}
		if err := p.validate(); err != nil {
			return fieldErr(field, err)
		}
	}

	for i, s := range c.Sinks {
		if err := s.validate(); err != nil {
			return fieldErr(fmt.Sprintf("sinks[%d]", i), err)
		}
	}

	if err := c.Observe.Validate(); err != nil {
		return fieldErr("observe", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fieldErr("auth", err)
	}
	return nil
}

func (p ProbeConfig) validate() error {
	if !slices.Contains(ValidProbeTypes, p.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownProbeType, p.Type)
	}
	if p.Timeout < 0 || p.DegradedAfter < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidValue)
	}

	switch p.Type {
	case ProbePostgres:
		if p.DSN == "" {
			return fmt.Errorf("%w: dsn is required", ErrInvalidValue)
		}
	case ProbeRedis, ProbeHTTP:
		if p.URL == "" {
			return fmt.Errorf("%w: url is required", ErrInvalidValue)
		}
	case ProbeKafka:
		if len(p.Brokers) == 0 {
			return fmt.Errorf("%w: brokers are required", ErrInvalidValue)
		}
	case ProbeMemory:
		for _, v := range []float64{p.WarningThreshold, p.CriticalThreshold} {
			if v < 0 || v >= 1 {
				return fmt.Errorf("%w: thresholds must be in [0, 1), got %v", ErrInvalidValue, v)
			}
		}
	}
	return nil
}

func (s SinkConfig) validate() error {
	if !slices.Contains(ValidSinkTypes, s.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownSinkType, s.Type)
	}

	switch s.Type {
	case SinkWebhook, SinkRedis:
		if s.URL == "" {
			return fmt.Errorf("%w: url is required", ErrInvalidValue)
		}
	case SinkKafka:
		if len(s.Brokers) == 0 || s.Topic == "" {
			return fmt.Errorf("%w: brokers and topic are required", ErrInvalidValue)
		}
	}
	if s.Retry != nil && s.Retry.MaxAttempts < 0 {
		return fmt.Errorf("%w: retry.max_attempts must not be negative", ErrInvalidValue)
	}
	return nil
}

// tagsPredicate selects probes carrying any of tags, or every probe.
func tagsPredicate(tags []string) health.Predicate {
	if len(tags) == 0 {
		return health.All()
	}
	return health.AnyTag(tags...)
}
