package probes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// HTTP checks an HTTP dependency with a GET request.
// Any response below 400 counts as reachable.
type HTTP struct {
	base
	url    string
	client *http.Client
}

// NewHTTP creates a probe for url. A nil client uses a client with a 5s timeout.
func NewHTTP(name, url string, client *http.Client, opts Options) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTP{base: newBase(name, opts), url: url, client: client}
}

// Check issues the request and drains the body.
func (h *HTTP) Check(ctx context.Context) health.Outcome {
	return h.roundTrip(ctx, h.name, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
		if err != nil {
			return err
		}
		resp, err := h.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("%s returned %d", h.url, resp.StatusCode)
		}
		return nil
	})
}

var _ health.Probe = (*HTTP)(nil)
