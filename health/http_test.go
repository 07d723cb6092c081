package health

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/healthops/cache"
)

func newScenarioMux(t *testing.T, a, b Outcome) *http.ServeMux {
	t.Helper()
	reg := NewRegistry()
	reg.MustRegister(
		staticProbe("A", a),
		staticProbe("B", b, TagReady),
	)
	reg.Seal()

	mux := http.NewServeMux()
	RegisterHandlers(mux, reg, NewExecutor(ExecutorConfig{Timeout: time.Second}), HandlerConfig{})
	return mux
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeDocument(t *testing.T, rec *httptest.ResponseRecorder) Document {
	t.Helper()
	var doc Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return doc
}

func TestHTTP_AllHealthy(t *testing.T) {
	mux := newScenarioMux(t, Healthy(""), Healthy(""))

	if rec := get(t, mux, PathReadiness); rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("ready = %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(t, mux, PathLiveness); rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("live = %d %q", rec.Code, rec.Body.String())
	}

	rec := get(t, mux, PathStatus)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	doc := decodeDocument(t, rec)
	if doc.Status != "Healthy" || len(doc.Details) != 2 {
		t.Fatalf("document = %+v", doc)
	}
	if doc.Details[0].Service != "A" || doc.Details[1].Service != "B" {
		t.Errorf("details out of order: %+v", doc.Details)
	}
}

func TestHTTP_DegradedReadyProbe(t *testing.T) {
	mux := newScenarioMux(t, Healthy(""), Degraded("slow", nil))

	rec := get(t, mux, PathStatus)
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
	if doc := decodeDocument(t, rec); doc.Status != "Degraded" {
		t.Errorf("status = %q, want Degraded", doc.Status)
	}
	if rec := get(t, mux, PathReadiness); rec.Code != http.StatusOK {
		t.Errorf("ready = %d, want 200", rec.Code)
	}
}

func TestHTTP_UnhealthyReadyProbe(t *testing.T) {
	mux := newScenarioMux(t, Healthy(""), Unhealthy("down", nil))

	if rec := get(t, mux, PathReadiness); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready = %d, want 503", rec.Code)
	}
	if rec := get(t, mux, PathLiveness); rec.Code != http.StatusOK {
		t.Errorf("live = %d, want 200", rec.Code)
	}
	if rec := get(t, mux, PathStatus); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHTTP_ReadinessIgnoresUntaggedProbes(t *testing.T) {
	mux := newScenarioMux(t, Unhealthy("down", nil), Healthy(""))

	if rec := get(t, mux, PathReadiness); rec.Code != http.StatusOK {
		t.Errorf("ready = %d, want 200", rec.Code)
	}
}

func TestHTTP_LivenessRunsNoProbe(t *testing.T) {
	var calls atomic.Int32
	reg := NewRegistry()
	reg.MustRegister(NewProbeFunc("A", []string{TagReady}, func(context.Context) Outcome {
		calls.Add(1)
		return Unhealthy("down", nil)
	}))

	mux := http.NewServeMux()
	RegisterHandlers(mux, reg, NewExecutor(), HandlerConfig{})

	if rec := get(t, mux, PathLiveness); rec.Code != http.StatusOK {
		t.Errorf("live = %d", rec.Code)
	}
	if calls.Load() != 0 {
		t.Errorf("liveness ran %d probes", calls.Load())
	}
}

func TestStatusHandler_UnencodableDataKeepsDetails(t *testing.T) {
	mux := newScenarioMux(t,
		Healthy("fine"),
		Healthy("ratio").WithData(map[string]any{"r": math.NaN()}),
	)

	rec := get(t, mux, PathStatus)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	doc := decodeDocument(t, rec)
	if doc.Status != "Healthy" || len(doc.Details) != 2 {
		t.Fatalf("document = %+v", doc)
	}
	if doc.Details[1].Service != "B" || doc.Details[1].Data != nil {
		t.Errorf("detail B = %+v, want data dropped", doc.Details[1])
	}
}

func TestHTTP_NoStore(t *testing.T) {
	mux := newScenarioMux(t, Healthy(""), Healthy(""))
	for _, path := range []string{PathStatus, PathReadiness, PathLiveness} {
		if got := get(t, mux, path).Header().Get("Cache-Control"); got != "no-store" {
			t.Errorf("%s Cache-Control = %q", path, got)
		}
	}
}

func TestStatusHandler_Predicate(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(
		staticProbe("A", Unhealthy("down", nil)),
		staticProbe("B", Healthy(""), "publish"),
	)

	h := NewStatusHandler(reg, NewExecutor(), StatusConfig{Predicate: HasTag("publish")})
	rec := get(t, h, PathStatus)
	doc := decodeDocument(t, rec)
	if rec.Code != http.StatusOK || len(doc.Details) != 1 || doc.Details[0].Service != "B" {
		t.Errorf("unexpected response %d %+v", rec.Code, doc)
	}
}

func TestStatusHandler_Timeout(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(sleepingProbe("slow", time.Second))

	h := NewStatusHandler(reg, NewExecutor(), StatusConfig{Timeout: 30 * time.Millisecond})
	rec := get(t, h, PathStatus)
	doc := decodeDocument(t, rec)
	if rec.Code != http.StatusServiceUnavailable || doc.Details[0].Description != "timed out" {
		t.Errorf("unexpected response %d %+v", rec.Code, doc)
	}
	if doc.Details[0].Exception != ErrProbeTimeout.Error() {
		t.Errorf("exception = %q", doc.Details[0].Exception)
	}
}

func TestStatusHandler_CacheServesWithinTTL(t *testing.T) {
	var calls atomic.Int32
	reg := NewRegistry()
	reg.MustRegister(NewProbeFunc("A", nil, func(context.Context) Outcome {
		calls.Add(1)
		return Degraded("slow", nil)
	}))

	h := NewStatusHandler(reg, NewExecutor(), StatusConfig{
		Cache:    cache.NewMemoryCache(),
		CacheTTL: time.Minute,
	})

	first := get(t, h, PathStatus)
	second := get(t, h, PathStatus)

	if calls.Load() != 1 {
		t.Errorf("probe ran %d times, want 1", calls.Load())
	}
	if first.Code != second.Code || first.Body.String() != second.Body.String() {
		t.Errorf("cached response differs: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestStatusHandler_CacheKeyedBySelection(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(
		staticProbe("A", Healthy("")),
		staticProbe("B", Unhealthy("down", nil), "publish"),
	)
	shared := cache.NewMemoryCache()
	exec := NewExecutor()

	all := NewStatusHandler(reg, exec, StatusConfig{Cache: shared, CacheTTL: time.Minute})
	healthyOnly := NewStatusHandler(reg, exec, StatusConfig{Predicate: Not(HasTag("publish")), Cache: shared, CacheTTL: time.Minute})

	if rec := get(t, all, PathStatus); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("all = %d", rec.Code)
	}
	if rec := get(t, healthyOnly, PathStatus); rec.Code != http.StatusOK {
		t.Errorf("selection served another selection's document: %d", rec.Code)
	}
}

func TestStatusHandler_CoalescesConcurrentRequests(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	reg := NewRegistry()
	reg.MustRegister(NewProbeFunc("A", nil, func(context.Context) Outcome {
		calls.Add(1)
		<-release
		return Healthy("")
	}))

	h := NewStatusHandler(reg, NewExecutor(), StatusConfig{})

	const n = 5
	var entered atomic.Int32
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entered.Add(1)
			codes[i] = get(t, h, PathStatus).Code
		}()
	}

	deadline := time.Now().Add(time.Second)
	for (entered.Load() < n || calls.Load() < 1) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("probe ran %d times for %d concurrent requests", got, n)
	}
	for i, c := range codes {
		if c != http.StatusOK {
			t.Errorf("request %d = %d", i, c)
		}
	}
}

func TestStatusHandler_RequesterCancelDoesNotAbortSharedRun(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(sleepingProbe("A", 30*time.Millisecond))
	h := NewStatusHandler(reg, NewExecutor(), StatusConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, PathStatus, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if doc := decodeDocument(t, rec); doc.Status != "Healthy" {
		t.Errorf("shared run was canceled with its first requester: %+v", doc)
	}
}

func TestRegisterHandlers_StatusMiddleware(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(staticProbe("A", Healthy(""), TagReady))

	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	mux := http.NewServeMux()
	RegisterHandlers(mux, reg, NewExecutor(), HandlerConfig{StatusMiddleware: deny})

	if rec := get(t, mux, PathStatus); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if rec := get(t, mux, PathReadiness); rec.Code != http.StatusOK {
		t.Errorf("readiness must not be guarded, got %d", rec.Code)
	}
}

func TestEncodeDecodeRendered(t *testing.T) {
	in := renderedStatus{code: 503, body: []byte("{\n}")}
	out, ok := decodeRendered(encodeRendered(in))
	if !ok || out.code != 503 || string(out.body) != "{\n}" {
		t.Errorf("round trip = %+v, %v", out, ok)
	}
	if _, ok := decodeRendered([]byte("garbage")); ok {
		t.Error("expected decode failure")
	}
}
