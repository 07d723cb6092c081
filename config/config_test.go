package config

import (
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/healthops/auth"
	"github.com/jonwraymond/healthops/health"
)

func validConfig() Config {
	c := Config{
		Service: ServiceConfig{Name: "checkout"},
		Probes: []ProbeConfig{
			{Name: "memory", Type: ProbeMemory},
			{Name: "db", Type: ProbePostgres, DSN: "postgres://localhost/app", Tags: []string{"ready"}},
		},
	}
	c.ApplyDefaults()
	return c
}

func TestApplyDefaults(t *testing.T) {
	c := Config{Service: ServiceConfig{Name: "checkout", Version: "1.2.3"}}
	c.ApplyDefaults()

	if c.HTTP.Addr != ":8080" || c.HTTP.MetricsPath != "/metrics" || c.HTTP.ShutdownTimeout != 10*time.Second {
		t.Errorf("HTTP = %+v", c.HTTP)
	}
	if c.Status.Timeout != health.DefaultTimeout {
		t.Errorf("Status.Timeout = %v", c.Status.Timeout)
	}
	if c.Readiness.Tag != health.TagReady || c.Readiness.Timeout != c.Status.Timeout {
		t.Errorf("Readiness = %+v", c.Readiness)
	}
	if c.Startup.Name != "startup" {
		t.Errorf("Startup.Name = %q", c.Startup.Name)
	}
	if c.Observe.ServiceName != "checkout" || c.Observe.Version != "1.2.3" {
		t.Errorf("Observe = %+v", c.Observe)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	c := Config{
		HTTP:      HTTPConfig{Addr: ":9000"},
		Status:    StatusConfig{Timeout: 2 * time.Second},
		Readiness: ReadinessConfig{Tag: "critical"},
	}
	c.ApplyDefaults()

	if c.HTTP.Addr != ":9000" || c.Status.Timeout != 2*time.Second || c.Readiness.Tag != "critical" {
		t.Errorf("explicit values overwritten: %+v", c)
	}
	if c.Readiness.Timeout != 2*time.Second {
		t.Errorf("Readiness.Timeout = %v, want the status timeout", c.Readiness.Timeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing service", func(c *Config) { c.Service.Name = "" }, ErrMissingServiceName},
		{"duplicate probe", func(c *Config) {
			c.Probes = append(c.Probes, ProbeConfig{Name: "db", Type: ProbeMemory})
		}, ErrDuplicateProbe},
		{"probe named like the gate", func(c *Config) {
			c.Startup.Enabled = true
			c.Startup.Name = "memory"
		}, ErrDuplicateProbe},
		{"unknown probe type", func(c *Config) {
			c.Probes = append(c.Probes, ProbeConfig{Name: "x", Type: "mongodb"})
		}, ErrUnknownProbeType},
		{"unnamed probe", func(c *Config) {
			c.Probes = append(c.Probes, ProbeConfig{Type: ProbeMemory})
		}, ErrInvalidValue},
		{"postgres without dsn", func(c *Config) { c.Probes[1].DSN = "" }, ErrInvalidValue},
		{"redis without url", func(c *Config) {
			c.Probes = append(c.Probes, ProbeConfig{Name: "r", Type: ProbeRedis})
		}, ErrInvalidValue},
		{"kafka without brokers", func(c *Config) {
			c.Probes = append(c.Probes, ProbeConfig{Name: "k", Type: ProbeKafka})
		}, ErrInvalidValue},
		{"memory threshold out of range", func(c *Config) { c.Probes[0].WarningThreshold = 1.5 }, ErrInvalidValue},
		{"negative probe timeout", func(c *Config) { c.Probes[0].Timeout = -time.Second }, ErrInvalidValue},
		{"unknown sink type", func(c *Config) {
			c.Sinks = []SinkConfig{{Type: "smtp"}}
		}, ErrUnknownSinkType},
		{"webhook without url", func(c *Config) {
			c.Sinks = []SinkConfig{{Type: SinkWebhook}}
		}, ErrInvalidValue},
		{"kafka sink without topic", func(c *Config) {
			c.Sinks = []SinkConfig{{Type: SinkKafka, Brokers: []string{"b:9092"}}}
		}, ErrInvalidValue},
		{"publisher without sinks", func(c *Config) { c.Publisher.Enabled = true }, ErrInvalidValue},
		{"unknown cache", func(c *Config) {
			c.Status.Cache = "memcached"
			c.Status.CacheTTL = time.Second
		}, ErrUnknownCache},
		{"redis cache without url", func(c *Config) {
			c.Status.Cache = "redis"
			c.Status.CacheTTL = time.Second
		}, ErrInvalidValue},
		{"cache without ttl", func(c *Config) { c.Status.Cache = "memory" }, ErrInvalidValue},
		{"negative max concurrent", func(c *Config) { c.Status.MaxConcurrent = -1 }, ErrInvalidValue},
		{"incomplete auth", func(c *Config) { c.Auth.JWT = &auth.JWTSettings{} }, auth.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidate_FieldPath(t *testing.T) {
	c := validConfig()
	c.Probes = append(c.Probes, ProbeConfig{Name: "db", Type: ProbeMemory})

	var fe *FieldError
	if err := c.Validate(); !errors.As(err, &fe) {
		t.Fatalf("error %v is not a *FieldError", err)
	}
	if fe.Field != "probes[2].name" {
		t.Errorf("Field = %q, want probes[2].name", fe.Field)
	}
}

func TestTagsPredicate(t *testing.T) {
	all := tagsPredicate(nil)
	if !all(nil) || !all(health.NewTags("x")) {
		t.Error("empty tags should select every probe")
	}

	some := tagsPredicate([]string{"ready", "core"})
	if !some(health.NewTags("core")) || some(health.NewTags("batch")) {
		t.Error("tag predicate selects wrong probes")
	}
}
