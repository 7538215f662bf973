package profiler

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/blend_tree"
	"github.com/rs/zerolog"
)

// Profiler tracks frame rate, blend tree evaluation time and memory statistics.
// Outputs stats to the log at a configurable interval.
//
// Tick must be called from a single goroutine. ObserveUpdate may be called concurrently, e.g. by
// trees updated from an animation.Manager.
type Profiler struct {
	logger         zerolog.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	treeUpdates  atomic.Int64
	treeFailures atomic.Int64
	treeNanos    atomic.Int64
	physicsSteps atomic.Int64
}

var _ blend_tree.UpdateObserver = &Profiler{}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         defaultLogger(),
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// ObserveUpdate records one blend tree evaluation.
func (p *Profiler) ObserveUpdate(ok, needsPhysics bool, elapsed time.Duration) {
	p.treeUpdates.Add(1)
	p.treeNanos.Add(int64(elapsed))
	if !ok {
		p.treeFailures.Add(1)
	}
	if needsPhysics {
		p.physicsSteps.Add(1)
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed: FPS, tree evaluation count and
// average time, heap usage, allocation rate, GC count and pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	updates := p.treeUpdates.Swap(0)
	failures := p.treeFailures.Swap(0)
	physics := p.physicsSteps.Swap(0)
	var avgTreeUs float64
	if nanos := p.treeNanos.Swap(0); updates > 0 {
		avgTreeUs = float64(nanos) / float64(updates) / 1000
	}

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info().
		Float64("fps", fps).
		Int64("tree_updates", updates).
		Int64("tree_failures", failures).
		Int64("physics_frames", physics).
		Float64("tree_avg_us", avgTreeUs).
		Float64("heap_mb", allocMB).
		Float64("alloc_rate_mb_s", allocRateMB).
		Uint32("gc_count", gcCount).
		Uint64("gc_last_pause_us", lastPauseUs).
		Uint64("gc_max_pause_us", maxPauseUs).
		Float64("sys_mb", sysMB).
		Msg("profiler")

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
