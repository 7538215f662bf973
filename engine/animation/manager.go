package animation

import (
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// manager is the implementation of the Manager interface.
type manager struct {
	logger    zerolog.Logger
	workers   int
	queueSize int

	// pool runs one Update task per animation. Workers are reused across frames.
	pool       worker.DynamicWorkerPool
	animations []Animation

	requirePhysics atomic.Bool
}

// Manager updates a set of independent animations once per frame, in parallel, and aggregates
// whether any of them needs the physics world to step.
//
// Add, Remove and Update must not be called concurrently with each other.
type Manager interface {
	// Add registers an animation. Adding the same animation twice is a no-op.
	//
	// Parameters:
	//   - a: the animation to add
	Add(a Animation)

	// Remove unregisters an animation.
	//
	// Parameters:
	//   - a: the animation to remove
	//
	// Returns:
	//   - bool: false if the animation was not registered
	Remove(a Animation) bool

	// Get looks up a registered animation by its ID.
	//
	// Parameters:
	//   - id: the animation ID
	//
	// Returns:
	//   - Animation: the animation, or nil
	//   - bool: false if no registered animation has that ID
	Get(id uuid.UUID) (Animation, bool)

	// Animations returns the registered animations in registration order.
	Animations() []Animation

	// Len returns the number of registered animations.
	Len() int

	// Update advances every animation by deltaTime and waits for all of them to finish.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - int: the number of animations whose tree failed to evaluate
	Update(deltaTime float32) int

	// RequirePhysics reports whether any animation requested a physics step in the last Update.
	RequirePhysics() bool
}

var _ Manager = &manager{}

// NewManager creates a Manager. The worker count defaults to one less than the number of CPUs.
//
// Parameters:
//   - options: variadic list of ManagerBuilderOption functions to configure the manager
//
// Returns:
//   - Manager: the new manager
func NewManager(options ...ManagerBuilderOption) Manager {
	m := &manager{
		logger:    defaultManagerLogger(),
		workers:   max(runtime.NumCPU()-1, 1),
		queueSize: 256,
	}
	for _, opt := range options {
		opt(m)
	}

	// Initialize the pool after options so WithWorkers can override the default.
	m.pool = worker.NewDynamicWorkerPool(m.workers, m.queueSize, 1*time.Second)
	return m
}

func (m *manager) Add(a Animation) {
	if a == nil || slices.Contains(m.animations, a) {
		return
	}
	m.animations = append(m.animations, a)
	m.logger.Debug().Str("animation", a.Name()).Stringer("animation_id", a.ID()).Int("count", len(m.animations)).Msg("animation added")
}

func (m *manager) Remove(a Animation) bool {
	i := slices.Index(m.animations, a)
	if i < 0 {
		return false
	}
	m.animations = slices.Delete(m.animations, i, i+1)
	m.logger.Debug().Str("animation", a.Name()).Int("count", len(m.animations)).Msg("animation removed")
	return true
}

func (m *manager) Get(id uuid.UUID) (Animation, bool) {
	i := slices.IndexFunc(m.animations, func(a Animation) bool { return a.ID() == id })
	if i < 0 {
		return nil, false
	}
	return m.animations[i], true
}

func (m *manager) Animations() []Animation {
	return slices.Clone(m.animations)
}

func (m *manager) Len() int {
	return len(m.animations)
}

func (m *manager) Update(deltaTime float32) int {
	m.requirePhysics.Store(false)

	// The pool's own Wait blocks until workers idle out, so a WaitGroup is the per-frame barrier.
	var wg sync.WaitGroup
	var failed atomic.Int32
	for i, a := range m.animations {
		wg.Add(1)
		anim := a
		m.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				if !anim.Update(deltaTime) {
					failed.Add(1)
				}
				if anim.NeedsPhysics() {
					m.requirePhysics.Store(true)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if n := failed.Load(); n > 0 {
		m.logger.Trace().Int32("failed", n).Msg("animations failed to evaluate")
	}
	return int(failed.Load())
}

func (m *manager) RequirePhysics() bool {
	return m.requirePhysics.Load()
}
