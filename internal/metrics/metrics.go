// Package metrics exposes prometheus collectors for the prospect flows.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels shared by the collectors.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
	OutcomeMalformed   = "malformed"
	OutcomeFailed      = "failed"
)

// Metrics holds counters/histograms for upstream calls and notifications.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	upstreamTotal      *prometheus.CounterVec
	upstreamLatency    *prometheus.HistogramVec
	malformedResponses *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	validationFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prospects",
			Subsystem: "zoho",
			Name:      "requests_total",
			Help:      "Total calls made to the Zoho CRM API, by transport and HTTP status outcome",
		}, []string{"operation", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prospects",
			Subsystem: "zoho",
			Name:      "request_duration_seconds",
			Help:      "Latency of Zoho CRM API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		malformedResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prospects",
			Subsystem: "zoho",
			Name:      "malformed_responses_total",
			Help:      "2xx Zoho CRM responses whose body could not be used",
		}, []string{"operation"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prospects",
			Subsystem: "notification",
			Name:      "total",
			Help:      "New prospect notifications by outcome",
		}, []string{"outcome"}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prospects",
			Subsystem: "validation",
			Name:      "failures_total",
			Help:      "Create requests rejected by input validation",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upstreamTotal, m.upstreamLatency, m.malformedResponses, m.notificationsTotal, m.validationFailures)
	return m
}

// ObserveUpstream records one Zoho call. The outcome covers the transport and
// the HTTP status only; body problems go to ObserveMalformedResponse.
func (m *Metrics) ObserveUpstream(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(operation, outcome).Inc()
	m.upstreamLatency.WithLabelValues(operation).Observe(seconds)
}

// ObserveMalformedResponse records a successful call whose body did not
// decode or lacked the expected fields.
func (m *Metrics) ObserveMalformedResponse(operation string) {
	if m == nil {
		return
	}
	m.malformedResponses.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveNotification(outcome string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveValidationFailure() {
	if m == nil {
		return
	}
	m.validationFailures.Inc()
}
