package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// WebhookConfig configures a WebhookSink.
type WebhookConfig struct {
	// Name of the sink. Default: "webhook"
	Name string

	// URL receives a POST with the JSON Message.
	URL string

	// Service is stamped on every message.
	Service string

	// Headers are added to every request, e.g. Authorization.
	Headers map[string]string

	// Client sends the requests. Default: a client with a 10s timeout.
	Client *http.Client
}

// WebhookSink posts reports to an HTTP endpoint.
type WebhookSink struct {
	config WebhookConfig
}

// NewWebhookSink creates a webhook sink.
func NewWebhookSink(config WebhookConfig) *WebhookSink {
	if config.Name == "" {
		config.Name = "webhook"
	}
	if config.Client == nil {
		config.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSink{config: config}
}

// Name returns the configured name.
func (s *WebhookSink) Name() string { return s.config.Name }

// Publish posts the report. Responses of 300 and above are errors.
func (s *WebhookSink) Publish(ctx context.Context, report health.Report) error {
	body, err := Encode(s.config.Service, report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.config.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

var _ Sink = (*WebhookSink)(nil)
