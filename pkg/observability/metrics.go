package observability

import (
	"context"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by the engine hooks.
type Metrics struct {
	Commands       *prometheus.CounterVec
	CommandSeconds *prometheus.HistogramVec
	Parts          prometheus.Counter
	PartVertices   prometheus.Histogram
	Chunks         prometheus.Counter
	Updates        prometheus.Counter
	UpdateSeconds  prometheus.Histogram
	Updating       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dsg_commands_total",
				Help: "Scene-update commands dispatched, by type.",
			},
			[]string{"type"},
		),
		CommandSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dsg_command_duration_seconds",
				Help:    "Time spent dispatching one command, by type.",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"type"},
		),
		Parts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dsg_parts_finalized_total",
			Help: "Parts handed to the update handler, empty ones included.",
		}),
		PartVertices: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dsg_part_vertices",
			Help:    "Vertex count of finalized non-empty parts.",
			Buckets: prometheus.ExponentialBuckets(8, 8, 8),
		}),
		Chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dsg_geometry_chunks_total",
			Help: "Geometry chunks merged into finalized parts.",
		}),
		Updates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dsg_scene_updates_total",
			Help: "Completed scene refreshes.",
		}),
		UpdateSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dsg_scene_update_duration_seconds",
			Help:    "Wall time from UPDATE_SCENE_BEGIN to UPDATE_SCENE_END.",
			Buckets: prometheus.DefBuckets,
		}),
		Updating: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dsg_scene_updating",
			Help: "1 while a scene refresh is in progress.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Commands, m.CommandSeconds,
			m.Parts, m.PartVertices, m.Chunks,
			m.Updates, m.UpdateSeconds, m.Updating,
		)
	}
	return m
}

// Hooks returns lifecycle hooks that update m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(ctx context.Context, ev *domain.CommandEvent) {
			typ := string(ev.Type)
			m.Commands.WithLabelValues(typ).Inc()
			m.CommandSeconds.WithLabelValues(typ).Observe(ev.Duration.Seconds())
		},
		OnPartFinalized: func(ctx context.Context, ev *domain.PartEvent) {
			m.Parts.Inc()
			m.Chunks.Add(float64(ev.Chunks))
			if !ev.Empty {
				m.PartVertices.Observe(float64(ev.Vertices))
			}
		},
		OnUpdateBegin: func(ctx context.Context, ev *domain.UpdateEvent) {
			m.Updating.Set(1)
		},
		OnUpdateEnd: func(ctx context.Context, ev *domain.UpdateEvent) {
			m.Updating.Set(0)
			m.Updates.Inc()
			m.UpdateSeconds.Observe(ev.Elapsed.Seconds())
		},
	}
}

// Chain merges several hook sets; each callback runs in argument order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnCommand = chain(out.OnCommand, h.OnCommand)
		out.OnPartFinalized = chain(out.OnPartFinalized, h.OnPartFinalized)
		out.OnUpdateBegin = chain(out.OnUpdateBegin, h.OnUpdateBegin)
		out.OnUpdateEnd = chain(out.OnUpdateEnd, h.OnUpdateEnd)
	}
	return out
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, ev *E) {
		a(ctx, ev)
		b(ctx, ev)
	}
}
