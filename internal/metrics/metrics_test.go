package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveUpstream("create", OutcomeSuccess, 0.12)
	m.ObserveUpstream("create", OutcomeSuccess, 0.08)
	m.ObserveUpstream("list_recent", OutcomeUnavailable, 1.5)
	m.ObserveMalformedResponse("create")
	m.ObserveNotification(OutcomeFailed)
	m.ObserveValidationFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.upstreamTotal.WithLabelValues("create", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamTotal.WithLabelValues("list_recent", OutcomeUnavailable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.malformedResponses.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsTotal.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFailures))
	assert.Equal(t, 2, testutil.CollectAndCount(m.upstreamLatency))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpstream("create", OutcomeSuccess, 1)
		m.ObserveMalformedResponse("create")
		m.ObserveNotification(OutcomeSuccess)
		m.ObserveValidationFailure()
	})
}
