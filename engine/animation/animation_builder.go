package animation

import (
	"github.com/Carmen-Shannon/oxy-blend/engine/blend_tree"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/ragdoll"
	"github.com/Carmen-Shannon/oxy-blend/engine/tree_config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AnimationBuilderOption is a functional option for configuring an Animation during construction.
type AnimationBuilderOption func(*animation)

func defaultLogger() zerolog.Logger {
	return log.With().Str("component", "animation").Logger()
}

// WithName is an option builder that names the animation. The name is attached to every log line.
//
// Parameters:
//   - name: the animation name
//
// Returns:
//   - AnimationBuilderOption: a function that applies the name option to an animation
func WithName(name string) AnimationBuilderOption {
	return func(a *animation) {
		if name != "" {
			a.name = name
		}
	}
}

// WithLogger is an option builder that sets the logger of the animation and its tree.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - AnimationBuilderOption: a function that applies the logger option to an animation
func WithLogger(logger zerolog.Logger) AnimationBuilderOption {
	return func(a *animation) {
		a.logger = logger
	}
}

// WithClips is an option builder that registers clips by their names. A later clip replaces an
// earlier one of the same name.
//
// Parameters:
//   - clips: the clips to register
//
// Returns:
//   - AnimationBuilderOption: a function that applies the clips option to an animation
func WithClips(clips ...clip.Clip) AnimationBuilderOption {
	return func(a *animation) {
		for _, c := range clips {
			if c == nil {
				continue
			}
			if _, ok := a.clips[c.Name()]; !ok {
				a.clipOrder = append(a.clipOrder, c.Name())
			}
			a.clips[c.Name()] = c
		}
	}
}

// WithDefaultClip is an option builder that picks the clip played on construction.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - AnimationBuilderOption: a function that applies the default clip option to an animation
func WithDefaultClip(name string) AnimationBuilderOption {
	return func(a *animation) {
		a.defaultClip = name
	}
}

// WithRagdoll is an option builder that attaches a ragdoll. Ragdoll nodes built from a graph are
// connected to it.
//
// Parameters:
//   - r: the ragdoll
//
// Returns:
//   - AnimationBuilderOption: a function that applies the ragdoll option to an animation
func WithRagdoll(r ragdoll.Ragdoll) AnimationBuilderOption {
	return func(a *animation) {
		a.ragdoll = r
	}
}

// WithGraph is an option builder that builds the nodes of a graph document into the tree instead of
// playing a default clip.
//
// Parameters:
//   - doc: the graph document
//
// Returns:
//   - AnimationBuilderOption: a function that applies the graph option to an animation
func WithGraph(doc *tree_config.Document) AnimationBuilderOption {
	return func(a *animation) {
		a.graph = doc
	}
}

// WithTreeOptions is an option builder that forwards options to the underlying blend tree.
//
// Parameters:
//   - options: the tree options
//
// Returns:
//   - AnimationBuilderOption: a function that applies the tree options to an animation
func WithTreeOptions(options ...blend_tree.BlendTreeBuilderOption) AnimationBuilderOption {
	return func(a *animation) {
		a.treeOptions = append(a.treeOptions, options...)
	}
}
