// Package metrics counts catalog requests and image cache traffic.
// Every method is safe on a nil *Metrics, which records nothing.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics collects process-wide counters.
type Metrics struct {
	PageLatency *Histogram

	APIRequests atomic.Uint64
	APIErrors   atomic.Uint64
	APIRetries  atomic.Uint64
	ImageHits   atomic.Uint64
	ImageMisses atomic.Uint64

	startTime time.Time
}

// New creates a collector.
func New() *Metrics {
	return &Metrics{
		PageLatency: NewHistogram(1024),
		startTime:   time.Now(),
	}
}

// RecordPage records one completed API request and whether it failed.
func (m *Metrics) RecordPage(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.APIRequests.Add(1)
	if err != nil {
		m.APIErrors.Add(1)
	}
	m.PageLatency.Record(d)
}

// RecordRetry counts a rate-limited request that will be retried.
func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.APIRetries.Add(1)
}

// RecordImage counts an image cache lookup.
func (m *Metrics) RecordImage(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ImageHits.Add(1)
	} else {
		m.ImageMisses.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	PageLatency    LatencyStats `json:"page_latency"`
	APIRequests    uint64       `json:"api_requests"`
	APIErrors      uint64       `json:"api_errors"`
	APIRetries     uint64       `json:"api_retries"`
	APISuccessRate float64      `json:"api_success_rate"` // percentage
	ImageHits      uint64       `json:"image_hits"`
	ImageMisses    uint64       `json:"image_misses"`
	ImageHitRate   float64      `json:"image_hit_rate"` // percentage
	Uptime         string       `json:"uptime"`
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}

	s := Snapshot{
		PageLatency: m.PageLatency.Stats(),
		APIRequests: m.APIRequests.Load(),
		APIErrors:   m.APIErrors.Load(),
		APIRetries:  m.APIRetries.Load(),
		ImageHits:   m.ImageHits.Load(),
		ImageMisses: m.ImageMisses.Load(),
		Uptime:      time.Since(m.startTime).Round(time.Second).String(),
	}
	if s.APIRequests > 0 {
		s.APISuccessRate = float64(s.APIRequests-s.APIErrors) / float64(s.APIRequests) * 100
	}
	if lookups := s.ImageHits + s.ImageMisses; lookups > 0 {
		s.ImageHitRate = float64(s.ImageHits) / float64(lookups) * 100
	}
	return s
}
