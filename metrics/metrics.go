package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// The Record methods accept a nil receiver so callers can leave metrics
// disabled without guarding every call site.

// RecordFrame records one tick and the number of sparks it drew
func (r *Registry) RecordFrame(duration time.Duration, live int) {
	if r == nil {
		return
	}
	r.FramesTotal.Inc()
	r.FrameDuration.Observe(duration.Seconds())
	r.SparksLive.Set(float64(live))
}

// RecordEmission records sparks created and dropped by an emitter
func (r *Registry) RecordEmission(emitted, dropped int) {
	if r == nil {
		return
	}
	if emitted > 0 {
		r.SparksEmittedTotal.Add(float64(emitted))
	}
	if dropped > 0 {
		r.SparksDroppedTotal.Add(float64(dropped))
	}
}

// SetLiveSparks overrides the live spark gauge
func (r *Registry) SetLiveSparks(n int) {
	if r == nil {
		return
	}
	r.SparksLive.Set(float64(n))
}

// RecordDrag records a finished drag session
func (r *Registry) RecordDrag(cancelled bool) {
	if r == nil {
		return
	}
	outcome := "release"
	if cancelled {
		outcome = "cancel"
	}
	r.DragsTotal.WithLabelValues(outcome).Inc()
}

// UpdateScene updates the scene size gauges
func (r *Registry) UpdateScene(blocks, connections int) {
	if r == nil {
		return
	}
	r.SceneBlocks.Set(float64(blocks))
	r.SceneConnections.Set(float64(connections))
}

// RecordLoadError records a scene entry that could not be applied
func (r *Registry) RecordLoadError(kind string) {
	if r == nil {
		return
	}
	r.LoadErrorsTotal.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
