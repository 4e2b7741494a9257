package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewOrderMetricsWithRegisterer(registry)

	m.RecordOrderCreated(10 * time.Millisecond)
	m.RecordOrderCreated(20 * time.Millisecond)
	m.RecordStatusTransition("InPreparation")
	m.RecordNotificationFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusTransitions.WithLabelValues("InPreparation")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.statusTransitions.WithLabelValues("Finished")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(m.createDuration))

	metric := &dto.Metric{}
	require.NoError(t, m.createDuration.Write(metric))
	assert.Equal(t, uint64(2), metric.GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.03, metric.GetHistogram().GetSampleSum(), 1e-9)
}

func TestOrderMetrics_ReuseRegistered(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewOrderMetricsWithRegisterer(registry)
	second := NewOrderMetricsWithRegisterer(registry)

	first.RecordOrderCreated(time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(second.ordersCreated))
}

func TestOrderMetrics_NilSafe(t *testing.T) {
	var m *OrderMetrics
	assert.NotPanics(t, func() {
		m.RecordOrderCreated(time.Millisecond)
		m.RecordStatusTransition("Finished")
		m.RecordNotificationFailure()
	})
}

func TestHTTPMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewHTTPMetricsWithRegisterer(registry)

	m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))

	m.RequestFinished(http.MethodGet, "/api/v1/items/{id}", http.StatusNotFound, 5*time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/items/{id}", "404")))
}

func TestRegister_TypeMismatchPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	opts := prometheus.CounterOpts{Name: "dup_metric", Help: "dup"}
	register(registry, prometheus.NewCounter(opts), "dup_metric")

	require.Panics(t, func() {
		register(registry, prometheus.NewCounterVec(opts, []string{"label"}), "dup_metric")
	})
}

func TestOutboxMetrics_Backlog(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewOutboxMetricsWithRegisterer(registry)
	now := time.Date(2026, 1, 1, 0, 0, 10, 0, time.UTC)

	m.SetBacklog(3, now.Add(-10*time.Second), now)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.pending))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.oldestAge))

	m.SetBacklog(1, now.Add(time.Second), now)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.oldestAge), "clock skew must not produce negative age")

	m.SetBacklog(0, time.Time{}, now)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.pending))

	m.RecordAttempt(DeliverySent)
	m.RecordAttempt(DeliverySent)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues(DeliverySent)))
}
