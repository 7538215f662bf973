package blend_tree

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BlendTreeBuilderOption is a functional option for configuring a BlendTree during construction.
type BlendTreeBuilderOption func(*blendTree)

func defaultLogger() zerolog.Logger {
	return log.With().Str("component", "blend_tree").Logger()
}

// WithLogger is an option builder that sets the logger used for topology and transition events.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - BlendTreeBuilderOption: a function that applies the logger option to a tree
func WithLogger(logger zerolog.Logger) BlendTreeBuilderOption {
	return func(t *blendTree) {
		t.logger = logger
	}
}

// WithMaxNodes is an option builder that lowers the arena capacity below MaxNodes.
// Values outside [1, MaxNodes] are ignored.
//
// Parameters:
//   - maxNodes: the maximum number of nodes, the Output node included
//
// Returns:
//   - BlendTreeBuilderOption: a function that applies the capacity option to a tree
func WithMaxNodes(maxNodes int) BlendTreeBuilderOption {
	return func(t *blendTree) {
		if maxNodes >= 1 && maxNodes <= MaxNodes {
			t.maxNodes = maxNodes
		}
	}
}

// WithObserver is an option builder that registers an UpdateObserver, e.g. a metrics collector.
//
// Parameters:
//   - observer: the observer to notify after every Update
//
// Returns:
//   - BlendTreeBuilderOption: a function that applies the observer option to a tree
func WithObserver(observer UpdateObserver) BlendTreeBuilderOption {
	return func(t *blendTree) {
		t.observer = observer
	}
}
