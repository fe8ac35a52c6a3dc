// Package metrics exposes Prometheus instrumentation for the animation
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for one diagram
type Registry struct {
	// Frame Metrics
	FramesTotal   prometheus.Counter
	FrameDuration prometheus.Histogram

	// Spark Metrics
	SparksEmittedTotal prometheus.Counter
	SparksDroppedTotal prometheus.Counter
	SparksLive         prometheus.Gauge

	// Interaction Metrics
	DragsTotal *prometheus.CounterVec

	// Scene Metrics
	SceneBlocks      prometheus.Gauge
	SceneConnections prometheus.Gauge
	LoadErrorsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initFrameMetrics()
	r.initSparkMetrics()
	r.initSceneMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

func (r *Registry) initFrameMetrics() {
	r.FramesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "flowspark_frames_total",
			Help: "Total number of animation ticks processed",
		},
	)

	r.FrameDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowspark_frame_duration_seconds",
			Help:    "Time spent refreshing paths and sparks in one tick",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		},
	)

	r.DragsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowspark_drags_total",
			Help: "Total number of drag sessions by how they ended",
		},
		[]string{"outcome"}, // release, cancel
	)
}

func (r *Registry) initSparkMetrics() {
	r.SparksEmittedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "flowspark_sparks_emitted_total",
			Help: "Total number of sparks created by emitter connections",
		},
	)

	r.SparksDroppedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "flowspark_sparks_dropped_total",
			Help: "Total number of emissions dropped because a connection was at its live cap",
		},
	)

	r.SparksLive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "flowspark_sparks_live",
			Help: "Number of sparks drawn in the most recent tick",
		},
	)
}

func (r *Registry) initSceneMetrics() {
	r.SceneBlocks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "flowspark_scene_blocks",
			Help: "Number of blocks in the diagram",
		},
	)

	r.SceneConnections = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "flowspark_scene_connections",
			Help: "Number of connections in the diagram",
		},
	)

	r.LoadErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowspark_load_errors_total",
			Help: "Scene entries rejected during loading by entry kind",
		},
		[]string{"kind"}, // block, connection
	)
}
