package observe

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing service name",
			cfg:     Config{},
			wantErr: ErrMissingServiceName,
		},
		{
			name: "sample pct out of range",
			cfg: Config{
				ServiceName: "healthd",
				Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.5},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "unknown tracing exporter",
			cfg: Config{
				ServiceName: "healthd",
				Tracing:     TracingConfig{Enabled: true, Exporter: "zipkin"},
			},
			wantErr: ErrInvalidTracingExporter,
		},
		{
			name: "unknown metrics exporter",
			cfg: Config{
				ServiceName: "healthd",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "statsd"},
			},
			wantErr: ErrInvalidMetricsExporter,
		},
		{
			name: "unknown log level",
			cfg: Config{
				ServiceName: "healthd",
				Logging:     LoggingConfig{Enabled: true, Level: "trace"},
			},
			wantErr: ErrInvalidLogLevel,
		},
		{
			name: "disabled subsystems skip validation",
			cfg: Config{
				ServiceName: "healthd",
				Tracing:     TracingConfig{Exporter: "zipkin"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewObserver_Disabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "healthd"})
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}
	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("observer returned nil primitives")
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewObserver_LoggingCarriesServiceName(t *testing.T) {
	var buf syncBuffer
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "healthd",
		Logging:     LoggingConfig{Enabled: true, Level: "info"},
		LogWriter:   &buf,
	})
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}

	obs.Logger().Info(context.Background(), "started")
	if got := buf.entries(t)[0]["service"]; got != "healthd" {
		t.Errorf("service = %v, want healthd", got)
	}
}

func TestNewObserver_PrometheusRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "healthd",
		Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
		Registerer:  reg,
	})
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver: %v", err)
	}
	mw.Metrics().RecordSink(context.Background(), "log", nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected metric families in the registry")
	}
}
