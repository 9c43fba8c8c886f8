package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistogram_Stats(t *testing.T) {
	h := NewHistogram(10)
	assert.Equal(t, LatencyStats{}, h.Stats())

	for i := 1; i <= 5; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}

	s := h.Stats()
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 0.001)
	assert.InDelta(t, 3.0, s.P50, 0.001)
	assert.InDelta(t, 1.0, s.Min, 0.001)
	assert.InDelta(t, 5.0, s.Max, 0.001)
	assert.InDelta(t, 4.8, s.P95, 0.001)
}

func TestHistogram_RingKeepsNewest(t *testing.T) {
	h := NewHistogram(3)
	for i := 1; i <= 5; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}

	s := h.Stats()
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 3.0, s.Min, 0.001)
	assert.InDelta(t, 5.0, s.Max, 0.001)

	h.Reset()
	assert.Equal(t, 0, h.Stats().Count)
}

func TestMetrics_Snapshot(t *testing.T) {
	m := New()
	m.RecordPage(10*time.Millisecond, nil)
	m.RecordPage(20*time.Millisecond, nil)
	m.RecordPage(30*time.Millisecond, nil)
	m.RecordPage(40*time.Millisecond, errors.New("boom"))
	m.RecordRetry()
	m.RecordImage(true)
	m.RecordImage(false)

	s := m.Snapshot()
	assert.Equal(t, uint64(4), s.APIRequests)
	assert.Equal(t, uint64(1), s.APIErrors)
	assert.Equal(t, uint64(1), s.APIRetries)
	assert.InDelta(t, 75.0, s.APISuccessRate, 0.001)
	assert.InDelta(t, 50.0, s.ImageHitRate, 0.001)
	assert.Equal(t, 4, s.PageLatency.Count)
	assert.NotEmpty(t, s.Uptime)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordPage(time.Millisecond, nil)
	m.RecordRetry()
	m.RecordImage(true)
	assert.Equal(t, Snapshot{}, m.Snapshot())
}
