package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
)

// MetricsHandler serves GET /metrics in the Prometheus text format.
type MetricsHandler struct {
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
}

func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Log.Debug("Metrics endpoint accessed")

	families, err := h.Gatherer.Gather()
	if err != nil {
		h.fail(w, err)
		return
	}

	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			h.fail(w, fmt.Errorf("encode %s: %w", mf.GetName(), err))
			return
		}
	}

	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *MetricsHandler) fail(w http.ResponseWriter, err error) {
	h.Log.Error("Error collecting metrics", zap.String("error", err.Error()), zap.Stack("stack"))
	writeText(w, http.StatusInternalServerError, "Error collecting metrics: "+err.Error())
}
