package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики жизненного цикла заказов.
type OrderMetrics struct {
	ordersCreated     prometheus.Counter
	statusTransitions *prometheus.CounterVec
	createDuration    prometheus.Histogram
	// notificationFailures считает неудачные постановки уведомлений в outbox.
	notificationFailures prometheus.Counter
}

// NewOrderMetrics регистрирует метрики заказов в DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в переданном registry.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	return &OrderMetrics{
		ordersCreated: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total number of orders created.",
		}), "orders_created_total"),
		statusTransitions: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Total number of order status transitions grouped by target status.",
		}, []string{"status"}), "order_status_transitions_total"),
		createDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_create_duration_seconds",
			Help:      "Duration of order creation including item resolution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}), "order_create_duration_seconds"),
		notificationFailures: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preparation_notification_failures_total",
			Help:      "Total number of preparation notifications that could not be enqueued.",
		}), "preparation_notification_failures_total"),
	}
}

// RecordOrderCreated учитывает созданный заказ и длительность создания.
func (m *OrderMetrics) RecordOrderCreated(duration time.Duration) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.createDuration.Observe(duration.Seconds())
}

// RecordStatusTransition учитывает переход заказа в status.
func (m *OrderMetrics) RecordStatusTransition(status string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(status).Inc()
}

// RecordNotificationFailure учитывает потерянное уведомление.
func (m *OrderMetrics) RecordNotificationFailure() {
	if m == nil {
		return
	}
	m.notificationFailures.Inc()
}
