package coordinator

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus gauges and counters for one process's
// coordination state, generalizing a per-workflow-run metrics
// collector to per-worker search metrics: load, queue depth, incumbent
// value, and balance/terminate events.
type Metrics struct {
	load       prometheus.Gauge
	queueDepth prometheus.Gauge
	incumbent  prometheus.Gauge

	balanceEvents  *prometheus.CounterVec
	terminateTotal prometheus.Counter

	mu      sync.Mutex
	enabled bool
}

// NewMetrics registers the parsearch_ namespaced metrics with registry
// (prometheus.DefaultRegisterer if nil).
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		enabled: true,
		load: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "parsearch",
			Name:      "load",
			Help:      "Current load estimate of this process's node pool",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "parsearch",
			Name:      "queue_depth",
			Help:      "Current number of nodes in this process's node pool",
		}),
		incumbent: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "parsearch",
			Name:      "incumbent_value",
			Help:      "Best solution quality known to this process",
		}),
		balanceEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parsearch",
			Name:      "balance_events_total",
			Help:      "Count of load-balancing donate decisions issued by the hub",
		}, []string{"donor", "receiver"}),
		terminateTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parsearch",
			Name:      "terminate_total",
			Help:      "Count of times this hub has broadcast TERMINATE",
		}),
	}
}

func (m *Metrics) SetLoad(v float64) {
	if m.enabledNow() {
		m.load.Set(v)
	}
}

func (m *Metrics) SetQueueDepth(n int) {
	if m.enabledNow() {
		m.queueDepth.Set(float64(n))
	}
}

func (m *Metrics) SetIncumbent(v float64) {
	if m.enabledNow() {
		m.incumbent.Set(v)
	}
}

func (m *Metrics) IncBalanceEvent(donor, receiver string) {
	if m.enabledNow() {
		m.balanceEvents.WithLabelValues(donor, receiver).Inc()
	}
}

func (m *Metrics) IncTerminate() {
	if m.enabledNow() {
		m.terminateTotal.Inc()
	}
}

func (m *Metrics) enabledNow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Disable stops recording further values. The metrics stay registered
// with the registry NewMetrics was given.
func (m *Metrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}
