// Package metrics defines the link-tracker Prometheus collectors.
// All methods are safe on a nil *Metrics so tests can skip instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every link-tracker metric.
const Namespace = "link_tracker"

// Redirect outcomes.
const (
	OutcomeRedirected = "redirected"
	OutcomeNotFound   = "not_found"
	OutcomeReserved   = "reserved"
	OutcomeError      = "error"
)

// Click record failure reasons.
const (
	ReasonBufferFull  = "buffer_full"
	ReasonPersistence = "persistence"
	ReasonStopped     = "stopped"
	ReasonFlush       = "flush"
)

// Metrics holds the service collectors.
type Metrics struct {
	factory promauto.Factory

	RedirectsTotal      *prometheus.CounterVec
	RedirectDuration    prometheus.Histogram
	ClicksRecorded      prometheus.Counter
	ClickRecordFailures *prometheus.CounterVec
	LinksCreated        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{factory: factory}

	m.RedirectsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "redirects_total",
			Help:      "Redirect requests by outcome",
		},
		[]string{"outcome"},
	)

	m.RedirectDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "redirect_duration_seconds",
			Help:      "Time spent in the redirect pipeline",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
	)

	m.ClicksRecorded = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "clicks_recorded_total",
			Help:      "Click records written to the ledger",
		},
	)

	m.ClickRecordFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "click_record_failures_total",
			Help:      "Clicks that were redirected but not recorded, by reason",
		},
		[]string{"reason"},
	)

	m.LinksCreated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "links_created_total",
			Help:      "Links created by provenance",
		},
		[]string{"created_by"},
	)

	return m
}

// ObserveBufferDepth exports depth as the click buffer gauge.
func (m *Metrics) ObserveBufferDepth(depth func() int) {
	if m == nil {
		return
	}
	m.factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "click_buffer_depth",
			Help:      "Clicks waiting to be flushed to the ledger",
		},
		func() float64 { return float64(depth()) },
	)
}

// Redirect counts one pipeline run.
func (m *Metrics) Redirect(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RedirectsTotal.WithLabelValues(outcome).Inc()
	m.RedirectDuration.Observe(elapsed.Seconds())
}

// ClickRecorded counts n clicks written to the ledger.
func (m *Metrics) ClickRecorded(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ClicksRecorded.Add(float64(n))
}

// ClickRecordFailed counts n clicks lost for reason.
func (m *Metrics) ClickRecordFailed(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ClickRecordFailures.WithLabelValues(reason).Add(float64(n))
}

// LinkCreated counts one created link.
func (m *Metrics) LinkCreated(createdBy string) {
	if m == nil {
		return
	}
	m.LinksCreated.WithLabelValues(createdBy).Inc()
}
