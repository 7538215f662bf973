package profiler

import (
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/blend_tree"
	"github.com/prometheus/client_golang/prometheus"
)

// TreeMetrics exports blend tree evaluations as Prometheus metrics.
type TreeMetrics struct {
	updates       *prometheus.CounterVec
	physicsFrames prometheus.Counter
	duration      prometheus.Histogram
}

var _ blend_tree.UpdateObserver = &TreeMetrics{}

// NewTreeMetrics creates the collectors and registers them with reg.
//
// Parameters:
//   - reg: the registerer, e.g. a prometheus.NewRegistry()
//   - namespace: the metric namespace, may be empty
//
// Returns:
//   - *TreeMetrics: the metrics
//   - error: an error if a collector is already registered
func NewTreeMetrics(reg prometheus.Registerer, namespace string) (*TreeMetrics, error) {
	m := &TreeMetrics{
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "blend_tree",
				Name:      "updates_total",
				Help:      "Total number of blend tree evaluations",
			},
			[]string{"status"},
		),
		physicsFrames: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "blend_tree",
				Name:      "physics_frames_total",
				Help:      "Total number of evaluations that requested a physics step",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "blend_tree",
				Name:      "update_duration_seconds",
				Help:      "Duration of blend tree evaluation in seconds",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
		),
	}

	for _, c := range []prometheus.Collector{m.updates, m.physicsFrames, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveUpdate records one blend tree evaluation.
func (m *TreeMetrics) ObserveUpdate(ok, needsPhysics bool, elapsed time.Duration) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.updates.WithLabelValues(status).Inc()
	if needsPhysics {
		m.physicsFrames.Inc()
	}
	m.duration.Observe(elapsed.Seconds())
}

// Observers fans one evaluation out to several observers.
type Observers []blend_tree.UpdateObserver

var _ blend_tree.UpdateObserver = Observers{}

// ObserveUpdate forwards the evaluation to every non-nil observer.
func (o Observers) ObserveUpdate(ok, needsPhysics bool, elapsed time.Duration) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveUpdate(ok, needsPhysics, elapsed)
		}
	}
}
