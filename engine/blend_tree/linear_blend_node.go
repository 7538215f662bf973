package blend_tree

import (
	"github.com/Carmen-Shannon/oxy-blend/common"
)

// LinearBlendNode interpolates the poses of slots 0 and 1 by a blend factor.
type LinearBlendNode struct {
	baseNode

	blendFactor float32
}

var _ BlendNode = &LinearBlendNode{}

func newLinearBlendNode(tree *blendTree, id NodeID) *LinearBlendNode {
	return &LinearBlendNode{baseNode: newBaseNode(tree, id, NodeTypeLinearBlend)}
}

func (n *LinearBlendNode) Update(deltaTime float32, needsPhysics *bool) bool {
	if !n.updateInputs(deltaTime, needsPhysics) {
		return false
	}
	return n.ProcessData(deltaTime)
}

// ProcessData blends both inputs when present, passes a lone input through, and fails with no inputs.
func (n *LinearBlendNode) ProcessData(deltaTime float32) bool {
	return n.blend()
}

func (n *LinearBlendNode) blend() bool {
	in0, in1 := n.Input(0), n.Input(1)
	switch {
	case in0 != nil && in1 != nil:
		n.pose.BlendLinear(in0.Pose(), in1.Pose(), n.blendFactor)
	case in0 != nil:
		n.pose.CopyFrom(in0.Pose())
	case in1 != nil:
		n.pose.CopyFrom(in1.Pose())
	default:
		return false
	}
	return true
}

// BlendFactor returns the weight of slot 1 in [0, 1].
func (n *LinearBlendNode) BlendFactor() float32 {
	return n.blendFactor
}

// SetBlendFactor sets the weight of slot 1. Values are clamped to [0, 1].
//
// Parameters:
//   - factor: the blend factor
func (n *LinearBlendNode) SetBlendFactor(factor float32) {
	n.blendFactor = common.Clamp01(factor)
}
