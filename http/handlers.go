package http

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"steelforecast/ml"
	"steelforecast/monitoring"
)

// Predictor is the request/response boundary the dashboard talks to.
type Predictor interface {
	PredictRaw(ctx context.Context, in ml.RawInput) (ml.PredictionResult, ml.FeatureRecord, error)
}

type HandlerOptions struct {
	Predictor        Predictor
	ModelsLoaded     func() bool
	ArtifactsChanged func() bool
	Logger           *zap.Logger
	Metrics          *monitoring.MetricsCollector
	// MaxMessageBytes caps websocket messages.
	MaxMessageBytes int64
}

// Handler serves the dashboard page, the JSON API and the live channel.
type Handler struct {
	predictor        Predictor
	modelsLoaded     func() bool
	artifactsChanged func() bool
	logger           *zap.Logger
	metrics          *monitoring.MetricsCollector
	page             *template.Template
	static           http.Handler
	upgrader         websocket.Upgrader
	maxMessageBytes  int64
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Predictor == nil {
		return nil, errors.New("predictor is required")
	}
	page, err := template.ParseFS(assets, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	staticFS, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}

	h := &Handler{
		predictor:        opts.Predictor,
		modelsLoaded:     opts.ModelsLoaded,
		artifactsChanged: opts.ArtifactsChanged,
		logger:           opts.Logger,
		metrics:          opts.Metrics,
		page:             page,
		static:           http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		maxMessageBytes: opts.MaxMessageBytes,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.metrics == nil {
		h.metrics = monitoring.NewMetricsCollector()
	}
	h.metrics.Describe("predictions_total", "Prediction requests by channel and outcome")
	h.metrics.Describe("prediction_duration_seconds", "Time spent in the prediction service")
	h.metrics.Describe("models_loaded", "1 when all model artifacts are loaded")
	h.metrics.Describe("artifacts_changed", "1 when an artifact changed on disk after startup")
	if h.modelsLoaded == nil {
		h.modelsLoaded = func() bool { return true }
	}
	if h.artifactsChanged == nil {
		h.artifactsChanged = func() bool { return false }
	}
	if h.maxMessageBytes <= 0 {
		h.maxMessageBytes = 64 << 10
	}
	return h, nil
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleDashboard)
	mux.HandleFunc("POST /predict", h.handleDashboardPredict)
	mux.Handle("GET /static/", h.static)

	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/schema", h.handleSchema)
	mux.HandleFunc("POST /api/predict", h.handleAPIPredict)
	mux.HandleFunc("GET /api/ws/predict", h.handleLivePredict)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("GET /metrics", h.handlePrometheus)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := h.modelsLoaded()
	status := "ok"
	code := http.StatusOK
	if !loaded {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status":            status,
		"models_loaded":     loaded,
		"artifacts_changed": h.artifactsChanged(),
	})
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"widgets":       Widgets,
		"feature_names": ml.FeatureNames(),
	})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	h.refreshGauges()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"system":  h.metrics.GetSystemStats(),
		"metrics": h.metrics.Snapshot(),
	})
}

func (h *Handler) handlePrometheus(w http.ResponseWriter, r *http.Request) {
	h.refreshGauges()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write([]byte(h.metrics.ExportPrometheus()))
}

func (h *Handler) refreshGauges() {
	h.metrics.SetGauge("models_loaded", boolGauge(h.modelsLoaded()), nil)
	h.metrics.SetGauge("artifacts_changed", boolGauge(h.artifactsChanged()), nil)
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Prediction channels.
const (
	channelDashboard = "dashboard"
	channelAPI       = "api"
	channelLive      = "ws"
)

// predict runs the predictor and records the outcome.
func (h *Handler) predict(ctx context.Context, channel string, in ml.RawInput) (ml.PredictionResult, ml.FeatureRecord, error) {
	start := time.Now()
	res, rec, err := h.predictor.PredictRaw(ctx, in)
	h.metrics.Observe("prediction_duration_seconds", time.Since(start).Seconds(), map[string]string{"channel": channel})
	h.record(channel, err)
	return res, rec, err
}

func (h *Handler) record(channel string, err error) {
	outcome := "ok"
	var validation *ValidationError
	var inference *ml.InferenceError
	switch {
	case err == nil:
	case errors.As(err, &validation):
		outcome = "invalid_input"
	case errors.As(err, &inference):
		outcome = "inference_error"
	default:
		outcome = "error"
	}
	h.metrics.IncrCounter("predictions_total", 1, map[string]string{"channel": channel, "outcome": outcome})
}

// predictResponse is the JSON form of one prediction.
type predictResponse struct {
	Usage        float64                `json:"usage"`
	UsageDisplay string                 `json:"usage_display"`
	LoadType     string                 `json:"load_type"`
	Features     map[string]interface{} `json:"features"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Stage string `json:"stage,omitempty"`
}

func newPredictResponse(res ml.PredictionResult, rec ml.FeatureRecord) predictResponse {
	return predictResponse{
		Usage:        res.Usage,
		UsageDisplay: FormatUsage(res.Usage),
		LoadType:     res.LoadType,
		Features:     rec.Map(),
	}
}

// classify maps an error to its HTTP status and JSON body.
func classify(err error) (int, errorResponse) {
	var validation *ValidationError
	var inference *ml.InferenceError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Field: validation.Field}
	case errors.As(err, &inference):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Stage: inference.Stage}
	default:
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}
	}
}

func respondJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}
