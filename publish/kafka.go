package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jonwraymond/healthops/health"
)

// Producer is the part of *kgo.Client the Kafka sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink produces one record per report. The record key is the service
// name so reports of one service stay ordered within a partition.
type KafkaSink struct {
	producer Producer
	topic    string
	service  string
}

// NewKafkaSink creates a Kafka sink.
func NewKafkaSink(producer Producer, topic, service string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, service: service}
}

// Name returns "kafka".
func (s *KafkaSink) Name() string { return "kafka" }

// Publish produces the report and waits for the broker acknowledgement.
func (s *KafkaSink) Publish(ctx context.Context, report health.Report) error {
	if s.producer == nil {
		return errors.New("kafka producer not configured")
	}

	value, err := Encode(s.service, report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(s.service),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "status", Value: []byte(report.Status.String())},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}
	return nil
}

var (
	_ Sink     = (*KafkaSink)(nil)
	_ Producer = (*kgo.Client)(nil)
)
