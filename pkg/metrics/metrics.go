package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the engine's counters on a private registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	stockMovements  *prometheus.CounterVec
	stockQuantity   *prometheus.CounterVec
	guardRejections *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	lockWait        *prometheus.HistogramVec
	rpcDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		stockMovements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_stock_movements_total",
				Help: "Committed stock movements",
			},
			[]string{"kind", "reference_type"},
		),
		stockQuantity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_stock_units_total",
				Help: "Units moved by committed stock movements",
			},
			[]string{"kind"},
		),
		guardRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_stock_rejections_total",
				Help: "Stock mutations rejected by the quantity guard",
			},
			[]string{"reason"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_workflow_transitions_total",
				Help: "Request status transitions",
			},
			[]string{"workflow", "status"},
		),
		lockWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inventory_lock_wait_seconds",
				Help:    "Time spent waiting for a keyed lock",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"scope"},
		),
		rpcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inventory_grpc_request_duration_seconds",
				Help:    "Unary gRPC handling time",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.stockMovements,
		m.stockQuantity,
		m.guardRejections,
		m.transitions,
		m.lockWait,
		m.rpcDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveMovement(kind, referenceType string, quantity int64) {
	if m == nil {
		return
	}
	m.stockMovements.WithLabelValues(kind, referenceType).Inc()
	m.stockQuantity.WithLabelValues(kind).Add(float64(quantity))
}

func (m *Metrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.guardRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveTransition(workflow, status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(workflow, status).Inc()
}

func (m *Metrics) ObserveLockWait(scope string, d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.WithLabelValues(scope).Observe(d.Seconds())
}

func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(method, code).Observe(d.Seconds())
}
