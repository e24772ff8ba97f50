package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "clinic")

	m.Mutation("book", "conflict")
	m.Mutation("book", "conflict")
	m.AuthFailure("authorize", "doctor")
	m.Lock("fallback")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingOutcomes.WithLabelValues("book", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues("authorize", "doctor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LockOutcomes.WithLabelValues("fallback")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Mutation("book", "ok")
		m.ObserveRequest("GET", "/", "200", 0.1)
		m.AuthFailure("login", "admin")
		m.Lock("acquired")
	})
}
