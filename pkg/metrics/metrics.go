package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lava_indexer"

// Metrics holds the indexer collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	lastIndexedHeight prometheus.Gauge
	chainHead         prometheus.Gauge
	blockDuration     prometheus.Histogram
	blocksIndexed     prometheus.Counter
	blockFailures     prometheus.Counter
	events            *prometheus.CounterVec
	snapshots         *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		lastIndexedHeight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_indexed_height",
			Help:      "Highest height committed to the database",
		}),
		chainHead: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_head_height",
			Help:      "Latest height reported by the node",
		}),
		blockDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_duration_seconds",
			Help:      "Time to fetch, parse and store one height",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		blocksIndexed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_indexed_total",
			Help:      "Heights committed",
		}),
		blockFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_failures_total",
			Help:      "Heights that failed after retries",
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Chain events seen, by type and outcome",
		}, []string{"type", "outcome"}),
		snapshots: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stake_snapshots_total",
			Help:      "Full-state stake snapshots, by result",
		}, []string{"result"}),
	}
}

// RegisterCacheSize exposes the disk cache size through fn.
func (m *Metrics) RegisterCacheSize(fn func() float64) {
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_bytes",
		Help:      "Bytes currently stored in the block cache",
	}, fn)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) SetLastIndexedHeight(h int64) { m.lastIndexedHeight.Set(float64(h)) }
func (m *Metrics) SetChainHead(h int64)         { m.chainHead.Set(float64(h)) }

// ObserveBlock records one committed height.
func (m *Metrics) ObserveBlock(seconds float64) {
	m.blocksIndexed.Inc()
	m.blockDuration.Observe(seconds)
}

func (m *Metrics) ObserveBlockFailure() { m.blockFailures.Inc() }

// ObserveEvent counts one dispatched event.
func (m *Metrics) ObserveEvent(eventType, outcome string) {
	m.events.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) ObserveSnapshot(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.snapshots.WithLabelValues(result).Inc()
}
