package animation

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ManagerBuilderOption is a functional option for configuring a Manager during construction.
type ManagerBuilderOption func(*manager)

func defaultManagerLogger() zerolog.Logger {
	return log.With().Str("component", "animation_manager").Logger()
}

// WithWorkers is an option builder that sets the number of goroutines updating animations.
// Values below 1 are ignored.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - ManagerBuilderOption: a function that applies the worker count option to a manager
func WithWorkers(workers int) ManagerBuilderOption {
	return func(m *manager) {
		if workers >= 1 {
			m.workers = workers
		}
	}
}

// WithQueueSize is an option builder that sets how many pending updates the worker pool buffers.
// Values below 1 are ignored.
//
// Parameters:
//   - size: the queue size
//
// Returns:
//   - ManagerBuilderOption: a function that applies the queue size option to a manager
func WithQueueSize(size int) ManagerBuilderOption {
	return func(m *manager) {
		if size >= 1 {
			m.queueSize = size
		}
	}
}

// WithManagerLogger is an option builder that sets the manager's logger.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ManagerBuilderOption: a function that applies the logger option to a manager
func WithManagerLogger(logger zerolog.Logger) ManagerBuilderOption {
	return func(m *manager) {
		m.logger = logger
	}
}
