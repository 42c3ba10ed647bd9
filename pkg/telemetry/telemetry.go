// Package telemetry exposes trainee activity as Prometheus metrics for the
// instructor view.
package telemetry

import (
	"net/http"
	"strconv"

	"github.com/chazu/mechtrainer/pkg/interact"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mechtrainer"

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	Registry *prometheus.Registry

	wrongTool     *prometheus.CounterVec
	removals      *prometheus.CounterVec
	installs      *prometheus.CounterVec
	snapMisses    *prometheus.CounterVec
	steps         *prometheus.CounterVec
	removedParts  *prometheus.GaugeVec
	geometry      *prometheus.CounterVec
	geometryTimes *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the
// process and Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		wrongTool: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interaction",
				Name:      "wrong_tool_total",
				Help:      "Interactions attempted with the wrong tool.",
			},
			[]string{"module", "tool", "needed"},
		),
		removals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interaction",
				Name:      "removals_total",
				Help:      "Parts removed during disassembly.",
			},
			[]string{"module"},
		),
		installs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interaction",
				Name:      "installs_total",
				Help:      "Parts installed by snapping; swapped is true when a different identical slot was filled.",
			},
			[]string{"module", "swapped"},
		),
		snapMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interaction",
				Name:      "snap_misses_total",
				Help:      "Drags released away from every matching slot.",
			},
			[]string{"module"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "steps_completed_total",
				Help:      "Curriculum steps completed.",
			},
			[]string{"module"},
		),
		removedParts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "removed_parts",
				Help:      "Current size of the removed set.",
			},
			[]string{"module"},
		),
		geometry: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "geometry",
				Name:      "builds_total",
				Help:      "Mesh generations by generator kind and result.",
			},
			[]string{"kind", "status"},
		),
		geometryTimes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "geometry",
				Name:      "build_duration_seconds",
				Help:      "Duration of mesh generation.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
			[]string{"kind"},
		),
	}
	m.Registry.MustRegister(
		m.wrongTool,
		m.removals,
		m.installs,
		m.snapMisses,
		m.steps,
		m.removedParts,
		m.geometry,
		m.geometryTimes,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveEvent records the outcome of one gesture in module.
func (m *Metrics) ObserveEvent(module string, ev interact.Event) {
	switch ev.Outcome {
	case interact.WrongTool:
		m.wrongTool.WithLabelValues(module, string(ev.Tool), string(ev.Needed)).Inc()
	case interact.Removal:
		m.removals.WithLabelValues(module).Inc()
	case interact.Install:
		m.installs.WithLabelValues(module, strconv.FormatBool(ev.SlotID != ev.PartID)).Inc()
	case interact.SnapMiss:
		m.snapMisses.WithLabelValues(module).Inc()
	}
}

// ObserveRemoved sets the removed-set size of module.
func (m *Metrics) ObserveRemoved(module string, n int) {
	m.removedParts.WithLabelValues(module).Set(float64(n))
}

// ObserveStep counts a completed step of module.
func (m *Metrics) ObserveStep(module string) {
	m.steps.WithLabelValues(module).Inc()
}

// ObserveBuild records one mesh generation.
func (m *Metrics) ObserveBuild(kind string, seconds float64, failed bool) {
	status := "ok"
	if failed {
		status = "fallback"
	}
	m.geometry.WithLabelValues(kind, status).Inc()
	m.geometryTimes.WithLabelValues(kind).Observe(seconds)
}
