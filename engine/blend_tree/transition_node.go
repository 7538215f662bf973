package blend_tree

// transitionSlots lists which input slots a running transition updates, per style.
// Smooth styles keep both clips advancing; Frozen styles only advance the incoming clip so
// slot 0 holds the pose it had when the transition started.
var transitionSlots = map[TransitionType][]int{
	TransitionFrozen:     {1},
	TransitionFrozenSync: {1},
	TransitionSmooth:     {0, 1},
	TransitionSmoothSync: {0, 1},
}

var (
	idleSlots      = []int{0}
	completedSlots = []int{1}
)

// TransitionNode hands over from the clip in slot 0 to the clip in slot 1 over a fixed time.
//
// Before StartTransition only slot 0 is evaluated and the output is its pose. While transitioning
// the blend factor ramps from 0 to 1 over the transition time. Once complete only slot 1 is evaluated.
type TransitionNode struct {
	LinearBlendSyncNode

	transitionType TransitionType
	state          TransitionState
	maxTime        float32
	clock          float32
}

var _ BlendNode = &TransitionNode{}

func newTransitionNode(tree *blendTree, id NodeID) *TransitionNode {
	n := &TransitionNode{
		LinearBlendSyncNode: LinearBlendSyncNode{
			LinearBlendNode: LinearBlendNode{baseNode: newBaseNode(tree, id, NodeTypeTransition)},
			ratios:          [2]float32{1, 1},
		},
		maxTime: DefaultTransitionTime,
	}
	n.accepts = acceptsClipNode
	return n
}

func (n *TransitionNode) Update(deltaTime float32, needsPhysics *bool) bool {
	var slots []int
	switch n.state {
	case TransitionActive:
		var ok bool
		if slots, ok = transitionSlots[n.transitionType]; !ok {
			slots = transitionSlots[TransitionSmooth]
		}
	case TransitionCompleted:
		slots = completedSlots
	default:
		slots = idleSlots
	}

	success := true
	for _, slot := range slots {
		success = n.updateSlot(slot, deltaTime, needsPhysics) && success
	}
	if !success {
		return false
	}
	return n.ProcessData(deltaTime)
}

// ProcessData advances the transition clock and blends. The factor is 0 before the transition,
// clock/time while transitioning (reaching 1 ends the transition) and 1 afterwards.
func (n *TransitionNode) ProcessData(deltaTime float32) bool {
	switch n.state {
	case TransitionIdle:
		n.blendFactor = 0
	case TransitionCompleted:
		n.blendFactor = 1
	case TransitionActive:
		n.clock += deltaTime
		if n.maxTime <= 0 || n.clock >= n.maxTime {
			n.clock = max(n.maxTime, 0)
			n.blendFactor = 1
			n.state = TransitionCompleted
			if n.tree != nil {
				n.tree.logger.Debug().
					Uint32("node", uint32(n.id)).
					Stringer("transition_type", n.transitionType).
					Msg("transition completed")
			}
		} else {
			n.blendFactor = n.clock / n.maxTime
		}
	}

	if n.transitionType.Synchronized() {
		return n.syncBlend()
	}
	return n.blend()
}

// StartTransition begins the handover. An undefined transition type completes instantly.
// Otherwise the clock is reset; synchronized types align the incoming clip's playback position to
// the outgoing one and recompute the speed ratios. The node only enters the transitioning state
// when both inputs are wired.
func (n *TransitionNode) StartTransition() {
	if n.transitionType == TransitionUndefined {
		n.state = TransitionCompleted
		n.blendFactor = 1
		return
	}

	n.clock = 0
	n.blendFactor = 0

	if n.transitionType.Synchronized() {
		if c0, c1, ok := n.clipInputs(); ok {
			c1.SetElapsedTime(c0.ElapsedTime())
		}
		n.invalidateSyncRatios()
		n.refreshSyncRatios()
	}

	if n.Input(0) != nil && n.Input(1) != nil {
		n.state = TransitionActive
	}
}

// Reset returns the node to its idle state, zeroes the clock and restores both inputs' playback speed to 1.
func (n *TransitionNode) Reset() {
	n.clock = 0
	n.blendFactor = 0
	n.state = TransitionIdle
	for slot := 0; slot < 2; slot++ {
		if c, ok := n.Input(slot).(*ClipNode); ok {
			c.SetPlaybackSpeed(1)
		}
	}
}

// ToggleTransition starts an idle transition, or resets one that is running or complete.
func (n *TransitionNode) ToggleTransition() {
	if n.state == TransitionIdle {
		n.StartTransition()
		return
	}
	n.Reset()
}

// TransitionType returns how the node hands over between its inputs.
func (n *TransitionNode) TransitionType() TransitionType {
	return n.transitionType
}

// SetTransitionType sets how the node hands over between its inputs.
//
// Parameters:
//   - t: the transition type
func (n *TransitionNode) SetTransitionType(t TransitionType) {
	n.transitionType = t
}

// TransitionTime returns the transition duration in seconds.
func (n *TransitionNode) TransitionTime() float32 {
	return n.maxTime
}

// SetTransitionTime sets the transition duration in seconds. Negative values are treated as 0.
//
// Parameters:
//   - seconds: the transition duration
func (n *TransitionNode) SetTransitionTime(seconds float32) {
	n.maxTime = max(seconds, 0)
}

// State returns the current transition phase.
func (n *TransitionNode) State() TransitionState {
	return n.state
}

// IsTransitioning reports whether the blend is currently ramping.
func (n *TransitionNode) IsTransitioning() bool {
	return n.state == TransitionActive
}

// Clock returns the time elapsed since the transition started, in seconds.
func (n *TransitionNode) Clock() float32 {
	return n.clock
}
