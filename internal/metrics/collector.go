// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector records deliberation engine metrics.
type Collector struct {
	// Session metrics
	sessionsTotal   *prometheus.CounterVec
	sessionDuration *prometheus.HistogramVec
	sessionRounds   prometheus.Histogram
	activeSessions  prometheus.Gauge

	// Round metrics
	roundDuration     *prometheus.HistogramVec
	roundPerspectives prometheus.Histogram
	conflictsDetected prometheus.Counter

	// Provider metrics
	providerCallsTotal   *prometheus.CounterVec
	providerCallDuration *prometheus.HistogramVec

	// Veto metrics
	vetoesTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a metrics collector registered on reg. A nil reg uses
// the default registerer; tests pass a private registry to avoid duplicate
// registration panics.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// Session metrics
	c.sessionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of deliberation sessions by terminal status",
		},
		[]string{"status"},
	)

	c.sessionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Deliberation session duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	c.sessionRounds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_rounds",
			Help:      "Number of rounds run per session",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
	)

	c.activeSessions = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of sessions currently running",
		},
	)

	// Round metrics
	c.roundDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Round duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"round"},
	)

	c.roundPerspectives = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_perspectives",
			Help:      "Number of successful perspectives per round",
			Buckets:   []float64{1, 2, 3, 4, 5, 6},
		},
	)

	c.conflictsDetected = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_detected_total",
			Help:      "Total number of conflicts detected above threshold",
		},
	)

	// Provider metrics
	c.providerCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Total number of perspective provider calls",
		},
		[]string{"role", "outcome"}, // outcome: ok, timeout, failed, invalid
	)

	c.providerCallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Perspective provider call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"role"},
	)

	// Veto metrics
	c.vetoesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vetoes_total",
			Help:      "Total number of vetoes raised",
		},
		[]string{"role"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// SessionStarted marks a session as running.
func (c *Collector) SessionStarted() {
	c.activeSessions.Inc()
}

// RecordSession records a terminal session outcome.
func (c *Collector) RecordSession(status string, duration time.Duration, rounds int) {
	c.sessionsTotal.WithLabelValues(status).Inc()
	c.sessionDuration.WithLabelValues(status).Observe(duration.Seconds())
	c.sessionRounds.Observe(float64(rounds))
	c.activeSessions.Dec()
}

// RecordRound records one completed round.
func (c *Collector) RecordRound(round int, duration time.Duration, perspectives, conflicts int) {
	c.roundDuration.WithLabelValues(roundLabel(round)).Observe(duration.Seconds())
	c.roundPerspectives.Observe(float64(perspectives))
	if conflicts > 0 {
		c.conflictsDetected.Add(float64(conflicts))
	}
}

// RecordProviderCall records one provider call outcome.
func (c *Collector) RecordProviderCall(role, outcome string, duration time.Duration) {
	c.providerCallsTotal.WithLabelValues(role, outcome).Inc()
	c.providerCallDuration.WithLabelValues(role).Observe(duration.Seconds())
}

// RecordVeto records a raised veto.
func (c *Collector) RecordVeto(role string) {
	c.vetoesTotal.WithLabelValues(role).Inc()
}

// roundLabel keeps the round label cardinality bounded.
func roundLabel(round int) string {
	switch round {
	case 1:
		return "1"
	case 2:
		return "2"
	case 3:
		return "3"
	case 4:
		return "4"
	case 5:
		return "5"
	default:
		return "other"
	}
}
