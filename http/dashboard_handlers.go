package http

import (
	"bytes"
	"embed"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"steelforecast/ml"
)

//go:embed templates/*.html static/*
var assets embed.FS

type widgetView struct {
	Widget
	Value string
}

// MinAttr and MaxAttr render the bound for the input element, or "".
func (v widgetView) MinAttr() string { return boundAttr(v.Min) }
func (v widgetView) MaxAttr() string { return boundAttr(v.Max) }

func (v widgetView) StepAttr() string {
	if v.Integer {
		return "1"
	}
	return "any"
}

func boundAttr(b *float64) string {
	if b == nil {
		return ""
	}
	return FormatBound(*b)
}

type resultView struct {
	Usage    string
	LoadType string
}

type dashboardView struct {
	Widgets  []widgetView
	Result   *resultView
	Error    string
	Features []ml.Column
}

func newDashboardView(values map[string]string) dashboardView {
	view := dashboardView{Widgets: make([]widgetView, len(Widgets))}
	for i, w := range Widgets {
		value := w.Default
		if v, ok := values[w.Name]; ok {
			value = v
		}
		view.Widgets[i] = widgetView{Widget: w, Value: value}
	}
	return view
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newDashboardView(nil))
}

// handleDashboardPredict is the Predict button: collect the form, predict,
// re-render with the outcome. Failures keep the page usable.
func (h *Handler) handleDashboardPredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		view := newDashboardView(nil)
		view.Error = "could not read form: " + err.Error()
		h.render(w, code, view)
		return
	}
	in, values, err := parseInput(func(name string) (string, bool) {
		_, ok := r.PostForm[name]
		return r.PostForm.Get(name), ok
	})
	view := newDashboardView(values)
	if err != nil {
		h.record(channelDashboard, err)
		view.Error = err.Error()
		h.render(w, http.StatusBadRequest, view)
		return
	}

	res, rec, err := h.predict(r.Context(), channelDashboard, in)
	if err != nil {
		code, _ := classify(err)
		view.Error = "prediction failed: " + err.Error()
		if errors.Is(err, ml.ErrSchemaMismatch) {
			view.Error += " (model artifacts do not match this dashboard's feature schema)"
		}
		h.render(w, code, view)
		return
	}
	view.Result = &resultView{Usage: FormatUsage(res.Usage), LoadType: res.LoadType}
	view.Features = rec.Columns()
	h.render(w, http.StatusOK, view)
}

func (h *Handler) render(w http.ResponseWriter, code int, view dashboardView) {
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, view); err != nil {
		h.logger.Error("render dashboard", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}
