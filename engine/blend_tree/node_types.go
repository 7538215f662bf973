package blend_tree

import (
	"math"
	"strings"
)

const (
	// MaxInputs is the number of input slots every node carries.
	MaxInputs = 4

	// MaxNodes is the upper bound on the number of nodes a tree may hold, the Output node included.
	MaxNodes = 1000

	// DefaultTransitionTime is the transition duration new TransitionNodes start with, in seconds.
	DefaultTransitionTime float32 = 1.0
)

// NodeID is a stable handle to a node inside a BlendTree. Handles are never reused within a tree,
// so a handle to a removed node simply stops resolving.
type NodeID uint32

const (
	// RootNodeID is the handle of the Output node every tree is created with.
	RootNodeID NodeID = 0

	// InvalidNodeID marks an empty input slot and is the failure sentinel returned by AddNode.
	InvalidNodeID NodeID = math.MaxUint32
)

// NodeType identifies the concrete kind of a BlendNode. It is fixed at construction.
type NodeType int

const (
	// NodeTypeUndefined is not a constructible node kind.
	NodeTypeUndefined NodeType = iota - 1

	// NodeTypeOutput passes its single input through as the tree's result.
	NodeTypeOutput

	// NodeTypeClip plays back an animation clip.
	NodeTypeClip

	// NodeTypeLinearBlend interpolates two input poses by a blend factor.
	NodeTypeLinearBlend

	// NodeTypeLinearBlendSync interpolates two clip poses while keeping their cycles phase-aligned.
	NodeTypeLinearBlendSync

	// NodeTypeTransition hands over from one clip to another over time.
	NodeTypeTransition

	// NodeTypeRagdoll hands the pose to a physics ragdoll or reads it back.
	NodeTypeRagdoll
)

var nodeTypeNames = map[NodeType]string{
	NodeTypeOutput:          "output",
	NodeTypeClip:            "clip",
	NodeTypeLinearBlend:     "linear_blend",
	NodeTypeLinearBlendSync: "linear_blend_sync",
	NodeTypeTransition:      "transition",
	NodeTypeRagdoll:         "ragdoll",
}

// String returns the snake_case name of the node type.
func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return "undefined"
}

// ParseNodeType converts a node type name back into a NodeType.
//
// Parameters:
//   - name: the node type name, e.g. "linear_blend_sync"
//
// Returns:
//   - NodeType: the node type, or NodeTypeUndefined
//   - bool: false if the name was not recognised
func ParseNodeType(name string) (NodeType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range nodeTypeNames {
		if n == name {
			return t, true
		}
	}
	return NodeTypeUndefined, false
}

// TransitionType selects how a TransitionNode hands over between its two inputs.
type TransitionType int

const (
	// TransitionUndefined cuts to the second input instantly.
	TransitionUndefined TransitionType = iota

	// TransitionFrozen freezes the first input at its pose when the transition starts.
	TransitionFrozen

	// TransitionFrozenSync is TransitionFrozen with the second input phase-aligned to the first.
	TransitionFrozenSync

	// TransitionSmooth keeps both inputs playing while blending.
	TransitionSmooth

	// TransitionSmoothSync is TransitionSmooth with synchronized playback speeds.
	TransitionSmoothSync
)

var transitionTypeNames = map[TransitionType]string{
	TransitionUndefined:  "undefined",
	TransitionFrozen:     "frozen",
	TransitionFrozenSync: "frozen_sync",
	TransitionSmooth:     "smooth",
	TransitionSmoothSync: "smooth_sync",
}

// String returns the snake_case name of the transition type.
func (t TransitionType) String() string {
	if name, ok := transitionTypeNames[t]; ok {
		return name
	}
	return "undefined"
}

// Synchronized reports whether the transition type aligns and speed-matches its clips.
func (t TransitionType) Synchronized() bool {
	return t == TransitionFrozenSync || t == TransitionSmoothSync
}

// ParseTransitionType converts a transition type name back into a TransitionType.
//
// Parameters:
//   - name: the transition type name, e.g. "smooth_sync"
//
// Returns:
//   - TransitionType: the transition type, or TransitionUndefined
//   - bool: false if the name was not recognised
func ParseTransitionType(name string) (TransitionType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range transitionTypeNames {
		if n == name {
			return t, true
		}
	}
	return TransitionUndefined, false
}

// TransitionState is the phase a TransitionNode is in.
type TransitionState int

const (
	// TransitionIdle has not started; only the first input plays.
	TransitionIdle TransitionState = iota

	// TransitionActive is blending from the first input to the second.
	TransitionActive

	// TransitionCompleted has handed over; only the second input plays.
	TransitionCompleted
)

// String returns the name of the transition state.
func (s TransitionState) String() string {
	switch s {
	case TransitionIdle:
		return "idle"
	case TransitionActive:
		return "transitioning"
	case TransitionCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
