// Package animation drives one character's blend tree per frame and manages many characters in
// parallel.
package animation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-blend/engine/blend_tree"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/ragdoll"
	"github.com/Carmen-Shannon/oxy-blend/engine/skeleton"
	"github.com/Carmen-Shannon/oxy-blend/engine/tree_config"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	errNilBindPose   = errors.New("bind pose is nil")
	errUnknownClip   = errors.New("unknown clip")
	errNotClipSource = errors.New("current output is not a clip node")
	errTreeFull      = errors.New("blend tree is full")
)

// animation is the implementation of the Animation interface.
type animation struct {
	id     uuid.UUID
	name   string
	logger zerolog.Logger

	bindPose    *skeleton.Pose
	tree        blend_tree.BlendTree
	treeOptions []blend_tree.BlendTreeBuilderOption
	graph       *tree_config.Document
	nodes       map[string]blend_tree.NodeID

	clips       map[string]clip.Clip
	clipOrder   []string
	defaultClip string
	ragdoll     ragdoll.Ragdoll

	// owned holds the nodes created by Play and TransitionTo, which are freed once unused.
	owned      map[blend_tree.NodeID]bool
	current    blend_tree.NodeID
	transition *blend_tree.TransitionNode

	ok           bool
	needsPhysics bool
	boneMatrices []mgl32.Mat4
}

// Animation is a single animated character: a blend tree over a skeleton, the clips it can play and
// an optional ragdoll.
//
// Without a graph the Animation plays its default clip straight into the Output node. Play and
// TransitionTo then replace whatever feeds the Output node; a transition is spliced in as a
// TransitionNode and collapsed back to a plain clip once it completed.
type Animation interface {
	// ID returns the identifier assigned when the animation was created.
	ID() uuid.UUID

	// Name returns the name the animation was created with.
	Name() string

	// Tree returns the underlying blend tree for direct editing.
	Tree() blend_tree.BlendTree

	// Clip looks up a clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - clip.Clip: the clip, or nil
	//   - bool: false if no clip has that name
	Clip(name string) (clip.Clip, bool)

	// ClipNames returns the clip names in registration order.
	ClipNames() []string

	// Node resolves a node declared by the graph document by name.
	//
	// Parameters:
	//   - name: the node name
	//
	// Returns:
	//   - blend_tree.NodeID: the node handle
	//   - bool: false if no graph node has that name
	Node(name string) (blend_tree.NodeID, bool)

	// Play switches the Output node to the named clip immediately, cancelling any transition.
	//
	// Parameters:
	//   - clipName: the clip to play
	//   - loop: whether playback wraps
	//
	// Returns:
	//   - error: an error if the clip is unknown or the tree is full
	Play(clipName string, loop bool) error

	// TransitionTo hands over from the clip currently feeding the Output node to the named clip.
	// A transition already in flight is completed first.
	//
	// Parameters:
	//   - clipName: the clip to transition to
	//   - seconds: the transition duration
	//   - style: how the two clips are played during the hand-over
	//
	// Returns:
	//   - error: an error if the clip is unknown, the Output node is not fed by a clip or the tree is full
	TransitionTo(clipName string, seconds float32, style blend_tree.TransitionType) error

	// IsTransitioning reports whether a transition started by TransitionTo is blending.
	IsTransitioning() bool

	// TransitionProgress returns the blend factor of the pending transition in [0, 1], or 0.
	TransitionProgress() float32

	// CancelTransition drops a pending transition and returns to its source clip.
	CancelTransition()

	// Update evaluates the blend tree once.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - bool: whether the tree evaluated successfully
	Update(deltaTime float32) bool

	// NeedsPhysics reports whether the last Update requested a physics step.
	NeedsPhysics() bool

	// Pose returns the tree's output pose.
	Pose() *skeleton.Pose

	// BoneMatrices returns the skinning matrices of the output pose. The slice is reused between calls.
	BoneMatrices() []mgl32.Mat4

	// Ragdoll returns the ragdoll, or nil.
	Ragdoll() ragdoll.Ragdoll
}

var _ Animation = &animation{}

// NewAnimation creates an animation over a skeleton's bind pose.
//
// With WithGraph the document's nodes are built into the tree. Otherwise the default clip (the
// first registered clip unless WithDefaultClip names another) is wired into the Output node; with
// no clips at all the bind pose is held.
//
// Parameters:
//   - bindPose: the skeleton's bind pose, shared by every node
//   - options: variadic list of AnimationBuilderOption functions to configure the animation
//
// Returns:
//   - Animation: the new animation
//   - error: an error if the graph cannot be built or the default clip is unknown
func NewAnimation(bindPose *skeleton.Pose, options ...AnimationBuilderOption) (Animation, error) {
	if bindPose == nil {
		return nil, errNilBindPose
	}

	a := &animation{
		id:       uuid.New(),
		name:     "animation",
		logger:   defaultLogger(),
		bindPose: bindPose,
		clips:    make(map[string]clip.Clip),
		owned:    make(map[blend_tree.NodeID]bool),
		current:  blend_tree.InvalidNodeID,
	}
	for _, opt := range options {
		opt(a)
	}
	a.logger = a.logger.With().Str("animation", a.name).Str("animation_id", a.id.String()).Logger()

	treeOptions := append([]blend_tree.BlendTreeBuilderOption{blend_tree.WithLogger(a.logger)}, a.treeOptions...)
	a.tree = blend_tree.NewBlendTree(bindPose, treeOptions...)

	if a.graph != nil {
		nodes, err := a.graph.Build(a.tree, a.clips, a.ragdoll)
		if err != nil {
			return nil, fmt.Errorf("failed to build graph: %w", err)
		}
		a.nodes = nodes
		a.current = a.tree.Root().Inputs()[0]
		return a, nil
	}

	name := a.defaultClip
	if name == "" && len(a.clipOrder) > 0 {
		name = a.clipOrder[0]
	}
	if name == "" {
		id := a.tree.AddNode(blend_tree.NodeTypeClip)
		a.owned[id] = true
		a.current = id
		a.tree.ConnectToRoot(id)
		return a, nil
	}
	if err := a.Play(name, true); err != nil {
		return nil, fmt.Errorf("failed to play default clip: %w", err)
	}
	return a, nil
}

func (a *animation) ID() uuid.UUID {
	return a.id
}

func (a *animation) Name() string {
	return a.name
}

func (a *animation) Tree() blend_tree.BlendTree {
	return a.tree
}

func (a *animation) Clip(name string) (clip.Clip, bool) {
	c, ok := a.clips[name]
	return c, ok
}

func (a *animation) ClipNames() []string {
	return slices.Clone(a.clipOrder)
}

func (a *animation) Node(name string) (blend_tree.NodeID, bool) {
	id, ok := a.nodes[name]
	return id, ok
}

// addClipNode creates an owned clip node playing c.
func (a *animation) addClipNode(c clip.Clip, loop bool) (*blend_tree.ClipNode, error) {
	id := a.tree.AddNode(blend_tree.NodeTypeClip)
	if id == blend_tree.InvalidNodeID {
		return nil, errTreeFull
	}
	n, _ := blend_tree.NodeAs[*blend_tree.ClipNode](a.tree, id)
	n.SetClip(c)
	n.SetLooping(loop)
	a.owned[id] = true
	return n, nil
}

// free removes an owned node that nothing else refers to any more.
func (a *animation) free(id blend_tree.NodeID) {
	if !a.owned[id] {
		return
	}
	if n := a.tree.Node(id); n != nil {
		a.tree.RemoveAndFreeNode(n)
	}
	delete(a.owned, id)
}

func (a *animation) Play(clipName string, loop bool) error {
	c, ok := a.clips[clipName]
	if !ok {
		return fmt.Errorf("clip %q: %w", clipName, errUnknownClip)
	}

	n, err := a.addClipNode(c, loop)
	if err != nil {
		return err
	}

	previous := a.current
	a.dropTransition()
	a.tree.ConnectToRoot(n.ID())
	a.current = n.ID()
	a.free(previous)

	a.logger.Debug().Str("clip", clipName).Bool("loop", loop).Msg("playing clip")
	return nil
}

func (a *animation) TransitionTo(clipName string, seconds float32, style blend_tree.TransitionType) error {
	c, ok := a.clips[clipName]
	if !ok {
		return fmt.Errorf("clip %q: %w", clipName, errUnknownClip)
	}
	if a.transition != nil {
		a.collapseTransition()
	}

	source, ok := blend_tree.NodeAs[*blend_tree.ClipNode](a.tree, a.current)
	if !ok {
		return errNotClipSource
	}

	target, err := a.addClipNode(c, true)
	if err != nil {
		return err
	}
	id := a.tree.AddNode(blend_tree.NodeTypeTransition)
	if id == blend_tree.InvalidNodeID {
		a.free(target.ID())
		return errTreeFull
	}
	a.owned[id] = true

	tn, _ := blend_tree.NodeAs[*blend_tree.TransitionNode](a.tree, id)
	tn.SetTransitionType(style)
	tn.SetTransitionTime(seconds)
	a.tree.ConnectNodes(id, source.ID(), target.ID())
	a.tree.ConnectToRoot(id)
	tn.StartTransition()
	a.transition = tn

	a.logger.Debug().
		Str("clip", clipName).
		Float32("seconds", seconds).
		Stringer("style", style).
		Msg("transition started")
	return nil
}

// collapseTransition replaces the transition node by its target clip.
func (a *animation) collapseTransition() {
	tn := a.transition
	target := tn.Input(1)
	a.transition = nil
	if target == nil {
		return
	}
	if c, ok := target.(*blend_tree.ClipNode); ok {
		c.SetPlaybackSpeed(1)
	}

	a.tree.ConnectToRoot(target.ID())
	source := a.current
	a.current = target.ID()
	a.free(tn.ID())
	a.free(source)

	a.logger.Debug().Msg("transition collapsed")
}

// dropTransition removes a pending transition and its target without touching the Output node.
func (a *animation) dropTransition() {
	tn := a.transition
	if tn == nil {
		return
	}
	a.transition = nil
	tn.Reset()
	if target := tn.Input(1); target != nil {
		a.free(target.ID())
	}
	a.free(tn.ID())
}

func (a *animation) IsTransitioning() bool {
	return a.transition != nil && a.transition.IsTransitioning()
}

func (a *animation) TransitionProgress() float32 {
	if a.transition == nil {
		return 0
	}
	return a.transition.BlendFactor()
}

func (a *animation) CancelTransition() {
	if a.transition == nil {
		return
	}
	a.dropTransition()
	a.tree.ConnectToRoot(a.current)
	a.logger.Debug().Msg("transition cancelled")
}

func (a *animation) Update(deltaTime float32) bool {
	a.needsPhysics = false
	a.ok, a.needsPhysics = a.tree.Update(deltaTime)

	if a.transition != nil && a.transition.State() == blend_tree.TransitionCompleted {
		a.collapseTransition()
	}
	return a.ok
}

func (a *animation) NeedsPhysics() bool {
	return a.needsPhysics
}

func (a *animation) Pose() *skeleton.Pose {
	return a.tree.OutputPose()
}

func (a *animation) BoneMatrices() []mgl32.Mat4 {
	a.boneMatrices = a.tree.OutputPose().BoneMatrices(a.boneMatrices)
	return a.boneMatrices
}

func (a *animation) Ragdoll() ragdoll.Ragdoll {
	return a.ragdoll
}
