package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"steelforecast/ml"
	"steelforecast/monitoring"
)

type fakePredictor struct {
	result ml.PredictionResult
	err    error
	last   ml.RawInput
}

func (f *fakePredictor) PredictRaw(ctx context.Context, in ml.RawInput) (ml.PredictionResult, ml.FeatureRecord, error) {
	f.last = in
	return f.result, ml.BuildFeatures(in), f.err
}

func sampleService(t *testing.T) *ml.Service {
	t.Helper()
	paths, err := ml.WriteSampleBundle(t.TempDir())
	if err != nil {
		t.Fatalf("write sample bundle: %v", err)
	}
	bundle, err := ml.NewLoader(paths, nil).Load()
	if err != nil {
		t.Fatalf("load sample bundle: %v", err)
	}
	svc, err := ml.NewService(bundle)
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func newTestServer(t *testing.T, opts HandlerOptions) *Server {
	t.Helper()
	h, err := NewHandler(opts)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return NewServer(DefaultServerConfig(), h, nil)
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{
		Predictor:        &fakePredictor{},
		ModelsLoaded:     func() bool { return true },
		ArtifactsChanged: func() bool { return true },
	})
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "ok" || payload["models_loaded"] != true || payload["artifacts_changed"] != true {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestHealthHandlerUnavailable(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{
		Predictor:    &fakePredictor{},
		ModelsLoaded: func() bool { return false },
	})
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestSchemaHandler(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{Predictor: &fakePredictor{}})
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/schema", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload struct {
		Widgets      []Widget `json:"widgets"`
		FeatureNames []string `json:"feature_names"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(payload.Widgets) != 12 || len(payload.FeatureNames) != 18 {
		t.Fatalf("unexpected schema: %d widgets, %d features", len(payload.Widgets), len(payload.FeatureNames))
	}
}

func TestNewHandlerRequiresPredictor(t *testing.T) {
	if _, err := NewHandler(HandlerOptions{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{Predictor: &fakePredictor{}})
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers")
	}
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Fatalf("expected uuid request id, got %q", w.Header().Get("X-Request-ID"))
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "internal server error") {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestMetricsRecordOutcomes(t *testing.T) {
	metrics := monitoring.NewMetricsCollector()
	srv := newTestServer(t, HandlerOptions{Predictor: sampleService(t), Metrics: metrics})

	postJSON(srv, `{}`)
	postJSON(srv, `{"hour": 99}`)

	series, err := metrics.GetMetric("predictions_total")
	if err != nil {
		t.Fatal(err)
	}
	counts := make(map[string]float64)
	for _, m := range series {
		counts[m.Labels["channel"]+"/"+m.Labels["outcome"]] = m.Value
	}
	if counts["api/ok"] != 1 || counts["api/invalid_input"] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `predictions_total{channel="api",outcome="ok"} 1`) || !strings.Contains(body, "models_loaded 1") {
		t.Fatalf("unexpected exposition:\n%s", body)
	}

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	var payload struct {
		Metrics []monitoring.Metric `json:"metrics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(payload.Metrics) == 0 {
		t.Fatal("expected metrics in snapshot")
	}
}
