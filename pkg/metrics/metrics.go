package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CoordinatorMetrics instruments the shared order store and the polling
// views built on top of it.
type CoordinatorMetrics struct {
	Saves          *prometheus.CounterVec
	SaveDurationMS *prometheus.HistogramVec
	Transitions    *prometheus.CounterVec
	Refreshes      *prometheus.CounterVec
	OrdersByStatus *prometheus.GaugeVec
}

// New registers and returns the coordinator metrics set.
func New(namespace string) *CoordinatorMetrics {
	saves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_saves_total",
		Help:      "Total number of order store save attempts.",
	}, []string{"store", "outcome"})
	saveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_save_duration_ms",
		Help:      "Order store save latency in milliseconds.",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"store"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Total number of accepted order status transitions.",
	}, []string{"from", "to"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_refreshes_total",
		Help:      "Total number of poll-driven view refreshes.",
	}, []string{"view"})
	byStatus := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orders_by_status",
		Help:      "Orders currently persisted, by status.",
	}, []string{"status"})

	prometheus.MustRegister(saves, saveDuration, transitions, refreshes, byStatus)
	return &CoordinatorMetrics{
		Saves:          saves,
		SaveDurationMS: saveDuration,
		Transitions:    transitions,
		Refreshes:      refreshes,
		OrdersByStatus: byStatus,
	}
}

// ObserveSave records one save attempt. Nil receivers are allowed so
// stores can run unmetered in tests.
func (m *CoordinatorMetrics) ObserveSave(store, outcome string, durationMS float64) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(store, outcome).Inc()
	m.SaveDurationMS.WithLabelValues(store).Observe(durationMS)
}

// ObserveTransition records one accepted status transition.
func (m *CoordinatorMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

// ObserveRefresh records one poll tick for a named view.
func (m *CoordinatorMetrics) ObserveRefresh(view string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(view).Inc()
}

// SetOrdersByStatus replaces the per-status gauge values.
func (m *CoordinatorMetrics) SetOrdersByStatus(counts map[string]int) {
	if m == nil {
		return
	}
	for status, count := range counts {
		m.OrdersByStatus.WithLabelValues(status).Set(float64(count))
	}
}

// Handler exposes the default registry over HTTP.
func Handler() http.Handler {
	return promhttp.Handler()
}
