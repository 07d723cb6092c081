package probes

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthops/health"
)

// Redis checks a Redis server with PING.
type Redis struct {
	base
	client goredis.UniversalClient
}

// NewRedis creates a probe on client.
func NewRedis(name string, client goredis.UniversalClient, opts Options) *Redis {
	return &Redis{base: newBase(name, opts), client: client}
}

// Check sends PING.
func (r *Redis) Check(ctx context.Context) health.Outcome {
	return r.roundTrip(ctx, "redis", func(ctx context.Context) error {
		return r.client.Ping(ctx).Err()
	})
}

var _ health.Probe = (*Redis)(nil)
