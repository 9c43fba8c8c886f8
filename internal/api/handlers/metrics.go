package handlers

import (
	"net/http"

	"github.com/ramonehamilton/card-binder/internal/api/response"
	"github.com/ramonehamilton/card-binder/internal/metrics"
)

// MetricsHandler exposes request and cache counters.
type MetricsHandler struct {
	metrics *metrics.Metrics
}

// NewMetricsHandler creates a new MetricsHandler. m may be nil.
func NewMetricsHandler(m *metrics.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// GetMetrics returns a snapshot of the counters.
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.metrics.Snapshot())
}
