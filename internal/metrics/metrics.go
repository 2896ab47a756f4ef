package metrics

import (
	"context"

	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors of one process.
type Metrics struct {
	Forks    prometheus.Counter
	Rejoins  prometheus.Counter
	Cycles   prometheus.Counter
	Units    *prometheus.CounterVec
	Drops    *prometheus.CounterVec
	Lookups  *prometheus.CounterVec
	Runs     *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// to expose them through promhttp.Handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Forks: f.NewCounter(prometheus.CounterOpts{
			Name: "talkweave_forks_total",
			Help: "Total number of dialogue forks resolved.",
		}),
		Rejoins: f.NewCounter(prometheus.CounterOpts{
			Name: "talkweave_rejoins_total",
			Help: "Total number of forks whose branches rejoined.",
		}),
		Cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "talkweave_cycles_total",
			Help: "Total number of dialogue loops cut by the walk.",
		}),
		Units: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talkweave_units_total",
			Help: "Talk units handled, labelled by kind (top_level, child, placeholder).",
		}, []string{"kind"}),
		Drops: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talkweave_dropped_total",
			Help: "Data-quality gaps skipped during generation, labelled by reason.",
		}, []string{"reason"}),
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talkweave_store_lookups_total",
			Help: "Store lookups seen by the cache layers, labelled by operation and result.",
		}, []string{"op", "result"}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talkweave_runs_total",
			Help: "Generation runs, labelled by kind and status.",
		}, []string{"kind", "status"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "talkweave_run_duration_ms",
			Help:    "Generation run latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"kind"}),
	}
}

// Lookup counts a cache lookup. Its signature matches the observers of the
// cache adapters.
func (m *Metrics) Lookup(op, result string) {
	m.Lookups.WithLabelValues(op, result).Inc()
}

// Hooks returns generation hooks feeding the collectors. Existing callbacks
// in next still run after the metrics are updated.
func (m *Metrics) Hooks(next domain.Hooks) domain.Hooks {
	return domain.Hooks{
		OnFork: func(ctx context.Context, e *domain.ForkEvent) {
			m.Forks.Inc()
			if e.RejoinID != nil {
				m.Rejoins.Inc()
			}
			next.Fork(ctx, e)
		},
		OnCycle: func(ctx context.Context, id int) {
			m.Cycles.Inc()
			next.Cycle(ctx, id)
		},
		OnUnit: func(ctx context.Context, e *domain.UnitEvent) {
			switch {
			case e.Placeholder:
				m.Units.WithLabelValues("placeholder").Inc()
			case e.TopLevel:
				m.Units.WithLabelValues("top_level").Inc()
			default:
				m.Units.WithLabelValues("child").Inc()
			}
			next.Unit(ctx, e)
		},
		OnDrop: func(ctx context.Context, reason string, id int) {
			m.Drops.WithLabelValues(reason).Inc()
			next.Drop(ctx, reason, id)
		},
		OnRun: func(ctx context.Context, e *domain.RunEvent) {
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.Runs.WithLabelValues(e.Kind, status).Inc()
			m.Duration.WithLabelValues(e.Kind).Observe(float64(e.Duration.Milliseconds()))
			next.Run(ctx, e)
		},
	}
}
