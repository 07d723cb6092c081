package publish

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthops/health"
)

// RedisConfig configures a RedisSink.
type RedisConfig struct {
	// Key stores the latest message. Default: "healthops:latest:<service>"
	Key string

	// Channel receives every message. Default: "healthops:reports"
	Channel string

	// TTL expires the latest message when publishing stops. Default: 0 (no expiry)
	TTL time.Duration

	// Service is stamped on every message.
	Service string
}

// RedisSink stores the latest report under a key and broadcasts it on a
// pub/sub channel, in one transaction.
type RedisSink struct {
	client goredis.UniversalClient
	config RedisConfig
}

// NewRedisSink creates a Redis sink.
func NewRedisSink(client goredis.UniversalClient, config RedisConfig) *RedisSink {
	if config.Key == "" {
		config.Key = "healthops:latest:" + config.Service
	}
	if config.Channel == "" {
		config.Channel = "healthops:reports"
	}
	return &RedisSink{client: client, config: config}
}

// Name returns "redis".
func (s *RedisSink) Name() string { return "redis" }

// Publish runs SET and PUBLISH in a MULTI block.
func (s *RedisSink) Publish(ctx context.Context, report health.Report) error {
	payload, err := Encode(s.config.Service, report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.config.Key, payload, s.config.TTL)
		pipe.Publish(ctx, s.config.Channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

var _ Sink = (*RedisSink)(nil)
