package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/card-binder/internal/metrics"
)

func TestMetricsHandler_GetMetrics(t *testing.T) {
	m := metrics.New()
	m.RecordPage(20*time.Millisecond, nil)
	m.RecordRetry()
	m.RecordImage(true)

	rec := httptest.NewRecorder()
	NewMetricsHandler(m).GetMetrics(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data metrics.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(1), body.Data.APIRequests)
	assert.Equal(t, uint64(1), body.Data.APIRetries)
	assert.Equal(t, uint64(1), body.Data.ImageHits)
	assert.InDelta(t, 100.0, body.Data.ImageHitRate, 0.001)
}

func TestMetricsHandler_NilMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMetricsHandler(nil).GetMetrics(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
