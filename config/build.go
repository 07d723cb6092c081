package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jonwraymond/healthops/auth"
	"github.com/jonwraymond/healthops/cache"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/probes"
	"github.com/jonwraymond/healthops/publish"
	"github.com/jonwraymond/healthops/resilience"
)

// Components are the runtime objects described by a Config.
type Components struct {
	Registry   *health.Registry
	Executor   *health.Executor
	Handlers   health.HandlerConfig
	Middleware *observe.Middleware

	// Gate is the startup gate, or nil when disabled.
	Gate *health.Gate

	// Publisher is nil when publishing is disabled.
	Publisher *publish.Publisher

	conns *connections
}

// Close releases every client opened by Build.
func (c *Components) Close() error {
	if c == nil || c.conns == nil {
		return nil
	}
	return c.conns.close()
}

// Build creates the registry, executor, handler settings and publisher.
// Every probe is instrumented with the observer's middleware; the registry is
// sealed before Build returns. Connections are opened lazily, so unreachable
// dependencies surface as Unhealthy probes rather than build errors.
func Build(ctx context.Context, cfg Config, obs observe.Observer) (*Components, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}
	logger := obs.Logger()

	c := &Components{
		Registry:   health.NewRegistry(),
		Executor:   health.NewExecutor(health.ExecutorConfig{Timeout: cfg.Status.Timeout, MaxConcurrent: cfg.Status.MaxConcurrent}),
		Middleware: mw,
		conns:      newConnections(),
	}
	fail := func(err error) (*Components, error) {
		_ = c.Close()
		return nil, err
	}

	if cfg.Startup.Enabled {
		c.Gate = health.NewGate(cfg.Startup.Name, cfg.Startup.Tags...)
		if err := c.Registry.Register(mw.Wrap(c.Gate)); err != nil {
			return fail(err)
		}
	}

	for i, pc := range cfg.Probes {
		p, err := c.conns.probe(pc)
		if err != nil {
			return fail(fieldErr(fmt.Sprintf("probes[%d]", i), err))
		}
		if err := c.Registry.Register(mw.Wrap(p)); err != nil {
			return fail(err)
		}
	}
	c.Registry.Seal()

	c.Handlers = health.HandlerConfig{
		Status: health.StatusConfig{
			Predicate: tagsPredicate(cfg.Status.Tags),
			Timeout:   cfg.Status.Timeout,
			CacheTTL:  cfg.Status.CacheTTL,
		},
		ReadyPredicate: health.HasTag(cfg.Readiness.Tag),
		ReadyTimeout:   cfg.Readiness.Timeout,
	}
	switch cfg.Status.Cache {
	case "memory":
		c.Handlers.Status.Cache = cache.NewMemoryCache()
	case "redis":
		client, err := c.conns.redis(cfg.Status.RedisURL)
		if err != nil {
			return fail(fieldErr("status.redis_url", err))
		}
		c.Handlers.Status.Cache = cache.NewRedisCache(client, cache.DefaultRedisPrefix+cfg.Service.Name+":")
	}

	if cfg.Auth.Enabled() {
		authn, err := auth.New(cfg.Auth)
		if err != nil {
			return fail(fieldErr("auth", err))
		}
		c.Handlers.StatusMiddleware = auth.Require(authn, logger.With(observe.F("component", "auth")))
	}

	if cfg.Publisher.Enabled {
		plog := logger.With(observe.F("component", "publisher"))
		opts := []publish.Option{publish.WithLogger(plog), publish.WithMetrics(mw.Metrics())}
		for i, sc := range cfg.Sinks {
			sink, err := c.conns.sink(sc, cfg.Service.Name, plog, mw.Metrics())
			if err != nil {
				return fail(fieldErr(fmt.Sprintf("sinks[%d]", i), err))
			}
			opts = append(opts, publish.WithSink(sink, sinkPolicy(sc, sink.Name(), plog)))
		}
		c.Publisher = publish.New(c.Registry, c.Executor, publish.Config{
			Delay:     cfg.Publisher.Delay,
			Period:    cfg.Publisher.Period,
			Timeout:   cfg.Publisher.Timeout,
			Predicate: tagsPredicate(cfg.Publisher.Tags),
		}, opts...)
	}

	logger.Debug(ctx, "components built",
		observe.F("probes", c.Registry.Names()),
		observe.F("sinks", len(cfg.Sinks)),
		observe.F("publisher", cfg.Publisher.Enabled),
	)
	return c, nil
}

// sinkPolicy returns the delivery policy of a sink, or nil for plain calls.
func sinkPolicy(sc SinkConfig, name string, logger observe.Logger) *resilience.Policy {
	var opts []resilience.PolicyOption
	if sc.Breaker != nil {
		opts = append(opts, resilience.WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{
			FailureThreshold: sc.Breaker.FailureThreshold,
			Cooldown:         sc.Breaker.Cooldown,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn(context.Background(), "sink circuit state changed",
					observe.F("sink", name),
					observe.F("from", from.String()),
					observe.F("to", to.String()),
				)
			},
		})))
	}
	if sc.Retry != nil {
		opts = append(opts, resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  sc.Retry.MaxAttempts,
			InitialDelay: sc.Retry.InitialDelay,
			MaxDelay:     sc.Retry.MaxDelay,
			Jitter:       true,
		})))
	}
	if sc.Timeout > 0 {
		opts = append(opts, resilience.WithTimeout(sc.Timeout))
	}
	if len(opts) == 0 {
		return nil
	}
	return resilience.NewPolicy(opts...)
}

// connections owns the clients opened for probes and sinks. Redis clients
// are shared per URL.
type connections struct {
	redisClients map[string]*goredis.Client
	closers      []func() error
}

func newConnections() *connections {
	return &connections{redisClients: make(map[string]*goredis.Client)}
}

func (c *connections) redis(url string) (*goredis.Client, error) {
	if client, ok := c.redisClients[url]; ok {
		return client, nil
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: redis url: %w", ErrInvalidValue, err)
	}
	client := goredis.NewClient(opts)
	c.redisClients[url] = client
	c.closers = append(c.closers, client.Close)
	return client, nil
}

func (c *connections) kafka(brokers []string, clientID string) (*kgo.Client, error) {
	client, err := probes.NewKafkaClient(brokers, clientID)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() error {
		client.Close()
		return nil
	})
	return client, nil
}

func (c *connections) postgres(dsn string) (*sql.DB, error) {
	db, err := probes.OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, db.Close)
	return db, nil
}

func (c *connections) probe(pc ProbeConfig) (health.Probe, error) {
	opts := probes.Options{Tags: pc.Tags, Timeout: pc.Timeout, DegradedAfter: pc.DegradedAfter}

	switch pc.Type {
	case ProbeMemory:
		return health.NewMemoryProbe(health.MemoryProbeConfig{
			Name:              pc.Name,
			Tags:              pc.Tags,
			WarningThreshold:  pc.WarningThreshold,
			CriticalThreshold: pc.CriticalThreshold,
			MaxAlloc:          pc.MaxAlloc,
		}), nil
	case ProbePostgres:
		db, err := c.postgres(pc.DSN)
		if err != nil {
			return nil, err
		}
		p := probes.NewDatabase(pc.Name, db, opts)
		if pc.Query != "" {
			p = p.WithQuery(pc.Query)
		}
		return p, nil
	case ProbeRedis:
		client, err := c.redis(pc.URL)
		if err != nil {
			return nil, err
		}
		return probes.NewRedis(pc.Name, client, opts), nil
	case ProbeKafka:
		client, err := c.kafka(pc.Brokers, pc.ClientID)
		if err != nil {
			return nil, err
		}
		return probes.NewKafka(pc.Name, client, opts), nil
	case ProbeHTTP:
		return probes.NewHTTP(pc.Name, pc.URL, nil, opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProbeType, pc.Type)
}

func (c *connections) sink(sc SinkConfig, service string, logger observe.Logger, metrics observe.Metrics) (publish.Sink, error) {
	switch sc.Type {
	case SinkLog:
		return publish.NewLogSink(logger), nil
	case SinkMetrics:
		return publish.NewMetricsSink(metrics), nil
	case SinkWebhook:
		return publish.NewWebhookSink(publish.WebhookConfig{
			Name:    sc.Name,
			URL:     sc.URL,
			Service: service,
			Headers: sc.Headers,
		}), nil
	case SinkKafka:
		client, err := c.kafka(sc.Brokers, sc.ClientID)
		if err != nil {
			return nil, err
		}
		return publish.NewKafkaSink(client, sc.Topic, service), nil
	case SinkRedis:
		client, err := c.redis(sc.URL)
		if err != nil {
			return nil, err
		}
		return publish.NewRedisSink(client, publish.RedisConfig{
			Key:     sc.Key,
			Channel: sc.Channel,
			TTL:     sc.TTL,
			Service: service,
		}), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSinkType, sc.Type)
}

func (c *connections) close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
