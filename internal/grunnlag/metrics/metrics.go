package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the grunnlag module. All methods are
// nil-safe so tests can pass a nil *Metrics.
type Metrics struct {
	Appended        *prometheus.CounterVec
	AppendLatency   prometheus.Histogram
	AssembleLatency prometheus.Histogram
	SnapshotPersons prometheus.Histogram
	Dropped         prometheus.Counter
	Conflicts       *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
	BreakerOpen     prometheus.Gauge
}

// New registers the grunnlag metrics with the default registry. Call once per process.
func New() *Metrics {
	return &Metrics{
		Appended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grunnlag_opplysninger_appended_total",
			Help: "Opplysninger appended, by type",
		}, []string{"opplysning_type"}),

		AppendLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "grunnlag_append_duration_seconds",
			Help:    "Duration of append transactions",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		AssembleLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "grunnlag_assemble_duration_seconds",
			Help:    "Duration of replay and snapshot assembly",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		SnapshotPersons: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "grunnlag_snapshot_persons",
			Help:    "Number of persons in assembled snapshots",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		}),

		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grunnlag_unresolved_subject_dropped_total",
			Help: "Opplysninger skipped because the subject is not in the persongalleri",
		}),

		Conflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grunnlag_integrity_conflicts_total",
			Help: "Groups omitted from snapshots for mixing constant and periodized records",
		}, []string{"opplysning_type"}),

		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grunnlag_snapshot_cache_lookups_total",
			Help: "Snapshot cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grunnlag_outbox_published_total",
			Help: "Outbox entries published to Kafka",
		}),

		OutboxFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grunnlag_outbox_publish_failures_total",
			Help: "Failed outbox publish batches",
		}),

		BreakerOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "grunnlag_outbox_breaker_open",
			Help: "1 while the outbox circuit breaker is open",
		}),
	}
}

func (m *Metrics) IncrementAppended(opplysningType string) {
	if m != nil {
		m.Appended.WithLabelValues(opplysningType).Inc()
	}
}

func (m *Metrics) ObserveAppendLatency(d time.Duration) {
	if m != nil {
		m.AppendLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveAssemble(d time.Duration, persons int) {
	if m != nil {
		m.AssembleLatency.Observe(d.Seconds())
		m.SnapshotPersons.Observe(float64(persons))
	}
}

func (m *Metrics) AddDropped(n int) {
	if m != nil && n > 0 {
		m.Dropped.Add(float64(n))
	}
}

func (m *Metrics) IncrementConflict(opplysningType string) {
	if m != nil {
		m.Conflicts.WithLabelValues(opplysningType).Inc()
	}
}

func (m *Metrics) RecordCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) AddOutboxPublished(n int) {
	if m != nil {
		m.OutboxPublished.Add(float64(n))
	}
}

func (m *Metrics) IncrementOutboxFailure() {
	if m != nil {
		m.OutboxFailures.Inc()
	}
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
