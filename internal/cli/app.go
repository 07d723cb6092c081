package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// app holds everything built from one configuration.
type app struct {
	cfg   config.Config
	obs   observe.Observer
	comps *config.Components
	prom  *prometheus.Registry
}

func loadConfig(ctx context.Context, opts *rootOptions) (config.Config, error) {
	return config.Load(ctx, opts.configPath, config.LoadOptions{EnvFiles: opts.envFiles})
}

// newApp creates the observer and the components. Logs go to logOut.
func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	a := &app{cfg: cfg, prom: prometheus.NewRegistry()}
	a.prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ocfg := cfg.Observe
	ocfg.LogWriter = logOut
	ocfg.Registerer = a.prom
	obs, err := observe.NewObserver(ctx, ocfg)
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	a.obs = obs

	comps, err := config.Build(ctx, cfg, obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	a.comps = comps
	return a, nil
}

func (a *app) logger() observe.Logger {
	return a.obs.Logger()
}

// handler serves the health endpoints, plus Prometheus metrics when that
// exporter is configured.
func (a *app) handler() http.Handler {
	mux := http.NewServeMux()
	health.RegisterHandlers(mux, a.comps.Registry, a.comps.Executor, a.comps.Handlers)
	if a.cfg.Observe.Metrics.Enabled && a.cfg.Observe.Metrics.Exporter == "prometheus" {
		mux.Handle(a.cfg.HTTP.MetricsPath, promhttp.HandlerFor(a.prom, promhttp.HandlerOpts{}))
	}
	return mux
}

func (a *app) close(ctx context.Context) error {
	return errors.Join(a.comps.Close(), a.obs.Shutdown(ctx))
}
