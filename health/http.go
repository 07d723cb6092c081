package health

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/healthops/cache"
)

// Default endpoint paths.
const (
	PathStatus    = "/status"
	PathReadiness = "/health/ready"
	PathLiveness  = "/health/live"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// No probe runs: the process answering is the whole test, so an outage of a
// dependency can never get the process restarted.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes.
// It runs the probes matching pred and answers with a bare status code.
func ReadinessHandler(reg *Registry, exec *Executor, pred Predicate, timeout time.Duration) http.HandlerFunc {
	if pred == nil {
		pred = HasTag(TagReady)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		report := exec.RunSelected(r.Context(), reg, pred, timeout)

		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(HTTPStatusCode(report.Status))
	}
}

// StatusConfig configures the full status handler.
type StatusConfig struct {
	// Predicate selects the probes reported. Default: all probes.
	Predicate Predicate

	// Timeout is the run budget. Default: the executor's timeout.
	Timeout time.Duration

	// Cache stores rendered documents for CacheTTL. Optional.
	Cache cache.Cache

	// CacheTTL is how long a rendered document is served from Cache.
	// Default: 0 (no caching)
	CacheTTL time.Duration
}

// StatusHandler serves the full status document.
//
// Concurrent requests share a single run, and the rendered document may be
// cached for a short TTL to keep frequent scrapes cheap.
type StatusHandler struct {
	reg    *Registry
	exec   *Executor
	config StatusConfig
	group  singleflight.Group
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(reg *Registry, exec *Executor, config StatusConfig) *StatusHandler {
	if config.Predicate == nil {
		config.Predicate = All()
	}
	if config.Timeout <= 0 {
		config.Timeout = exec.Timeout()
	}
	return &StatusHandler{reg: reg, exec: exec, config: config}
}

type renderedStatus struct {
	code int
	body []byte
}

// ServeHTTP runs the selected probes and writes the JSON document.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	probes := h.reg.Select(h.config.Predicate)
	key := statusKey(probes)
	v, _, _ := h.group.Do(key, func() (any, error) {
		return h.render(r.Context(), key, probes), nil
	})
	rendered := v.(renderedStatus)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(rendered.code)
	_, _ = w.Write(rendered.body)
}

// statusKey identifies the probe selection, so handlers with different
// predicates sharing one cache never serve each other's documents.
func statusKey(probes []Probe) string {
	names := make([]string, len(probes))
	for i, p := range probes {
		names[i] = p.Name()
	}
	return cache.StatusKey("status", names)
}

func (h *StatusHandler) render(ctx context.Context, key string, probes []Probe) renderedStatus {
	// The run is shared by every waiting request, so it must not be canceled
	// when the first requester goes away.
	ctx = context.WithoutCancel(ctx)

	if h.config.Cache != nil && h.config.CacheTTL > 0 {
		if raw, ok := h.config.Cache.Get(ctx, key); ok {
			if cached, ok := decodeRendered(raw); ok {
				return cached
			}
		}
	}

	report := h.exec.Run(ctx, probes, h.config.Timeout)

	body, err := json.Marshal(NewDocument(report))
	if err != nil {
		body = []byte(`{"status":"Unhealthy","duration":0,"details":[]}`)
		return renderedStatus{code: http.StatusServiceUnavailable, body: body}
	}
	rendered := renderedStatus{code: HTTPStatusCode(report.Status), body: body}

	if h.config.Cache != nil && h.config.CacheTTL > 0 {
		_ = h.config.Cache.Set(ctx, key, encodeRendered(rendered), h.config.CacheTTL)
	}
	return rendered
}

// Cached entries are "<code>\n<body>".
func encodeRendered(r renderedStatus) []byte {
	out := make([]byte, 0, len(r.body)+4)
	out = strconv.AppendInt(out, int64(r.code), 10)
	out = append(out, '\n')
	return append(out, r.body...)
}

func decodeRendered(raw []byte) (renderedStatus, bool) {
	head, body, found := bytes.Cut(raw, []byte{'\n'})
	if !found {
		return renderedStatus{}, false
	}
	code, err := strconv.Atoi(string(head))
	if err != nil {
		return renderedStatus{}, false
	}
	return renderedStatus{code: code, body: body}, true
}

// HandlerConfig configures RegisterHandlers.
type HandlerConfig struct {
	Status StatusConfig

	// ReadyPredicate selects readiness probes. Default: tag "ready".
	ReadyPredicate Predicate

	// ReadyTimeout is the readiness run budget. Default: the executor's timeout.
	ReadyTimeout time.Duration

	// StatusMiddleware wraps the status handler, e.g. for authentication.
	StatusMiddleware func(http.Handler) http.Handler
}

// RegisterHandlers registers the status, readiness and liveness handlers.
func RegisterHandlers(mux *http.ServeMux, reg *Registry, exec *Executor, cfg HandlerConfig) {
	var status http.Handler = NewStatusHandler(reg, exec, cfg.Status)
	if cfg.StatusMiddleware != nil {
		status = cfg.StatusMiddleware(status)
	}
	mux.Handle(PathStatus, status)
	mux.HandleFunc(PathReadiness, ReadinessHandler(reg, exec, cfg.ReadyPredicate, cfg.ReadyTimeout))
	mux.HandleFunc(PathLiveness, LivenessHandler())
}
