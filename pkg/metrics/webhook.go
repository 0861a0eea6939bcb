package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records outcomes of payment gateway webhook processing.
type WebhookMetrics struct {
	duration  *prometheus.HistogramVec
	processed *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	replayed  *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_finalize_duration_seconds",
		Help:    "Duration of webhook finalization in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_processed",
		Help: "Webhook events that completed finalization.",
	}, []string{"event"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_rejected",
		Help: "Webhook deliveries rejected before processing.",
	}, []string{"reason"})
	replayed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_replayed",
		Help: "Webhook deliveries skipped as already-processed replays.",
	}, []string{"event"})
	reg.MustRegister(duration, processed, rejected, replayed)
	return &WebhookMetrics{
		duration:  duration,
		processed: processed,
		rejected:  rejected,
		replayed:  replayed,
	}
}

// ObserveDuration records the finalization duration for the named event.
func (w *WebhookMetrics) ObserveDuration(event string, duration time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(event)).Observe(duration.Seconds())
}

// IncProcessed increments the processed counter for the named event.
func (w *WebhookMetrics) IncProcessed(event string) {
	if w == nil || w.processed == nil {
		return
	}
	w.processed.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncRejected increments the rejected counter for the given reason.
func (w *WebhookMetrics) IncRejected(reason string) {
	if w == nil || w.rejected == nil {
		return
	}
	w.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncReplayed increments the replay counter for the named event.
func (w *WebhookMetrics) IncReplayed(event string) {
	if w == nil || w.replayed == nil {
		return
	}
	w.replayed.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
