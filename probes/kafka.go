package probes

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jonwraymond/healthops/health"
)

// Pinger is the part of *kgo.Client the Kafka probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Kafka checks broker connectivity with a metadata round trip.
type Kafka struct {
	base
	client Pinger
}

// NewKafka creates a probe on client.
func NewKafka(name string, client Pinger, opts Options) *Kafka {
	return &Kafka{base: newBase(name, opts), client: client}
}

// NewKafkaClient creates a franz-go client for brokers.
func NewKafkaClient(brokers []string, clientID string, opts ...kgo.Opt) (*kgo.Client, error) {
	if len(brokers) == 0 {
		return nil, errors.New("probes: at least one kafka broker is required")
	}
	if clientID == "" {
		clientID = "healthops"
	}
	client, err := kgo.NewClient(append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
	}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return client, nil
}

// Check pings the brokers.
func (k *Kafka) Check(ctx context.Context) health.Outcome {
	if k.client == nil {
		return health.Unhealthy("kafka client not configured", nil)
	}
	return k.roundTrip(ctx, "kafka", k.client.Ping)
}

var (
	_ health.Probe = (*Kafka)(nil)
	_ Pinger       = (*kgo.Client)(nil)
)
