package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal       *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	deliveriesTotal    *prometheus.CounterVec
	rateLimitedTotal   *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	latency            *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alertpulse_signals_total",
				Help: "Total number of signals accepted into the pipeline",
			},
			[]string{"kind"},
		),
		notificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alertpulse_notifications_total",
				Help: "Total number of notifications created",
			},
			[]string{"type", "priority"},
		),
		deliveriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alertpulse_deliveries_total",
				Help: "Delivery attempts per channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
		rateLimitedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alertpulse_rate_limited_total",
				Help: "Notifications dropped by the hourly rate limiter",
			},
			[]string{"type"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alertpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "alertpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSignal records an accepted signal.
func (r *Recorder) RecordSignal(kind string) {
	r.signalsTotal.WithLabelValues(kind).Inc()
}

// RecordNotification records a created notification.
func (r *Recorder) RecordNotification(notifType, priority string) {
	r.notificationsTotal.WithLabelValues(notifType, priority).Inc()
}

// RecordDelivery records a channel delivery attempt.
func (r *Recorder) RecordDelivery(channel string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	r.deliveriesTotal.WithLabelValues(channel, outcome).Inc()
}

// RecordRateLimited records a notification dropped by the hourly cap.
func (r *Recorder) RecordRateLimited(alertType string) {
	r.rateLimitedTotal.WithLabelValues(alertType).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
