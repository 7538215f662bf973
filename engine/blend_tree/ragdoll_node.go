package blend_tree

import (
	"github.com/Carmen-Shannon/oxy-blend/engine/ragdoll"
)

// RagdollNode connects the kinematic pose in slot 0 to a physics ragdoll.
//
// Inactive, it drives the ragdoll's bodies from the upstream pose and forwards that pose.
// Active, it reads the simulated pose back from the ragdoll and requests a physics step.
type RagdollNode struct {
	baseNode

	active  bool
	ragdoll ragdoll.Ragdoll
}

var _ BlendNode = &RagdollNode{}

func newRagdollNode(tree *blendTree, id NodeID) *RagdollNode {
	return &RagdollNode{baseNode: newBaseNode(tree, id, NodeTypeRagdoll)}
}

// Update evaluates the upstream pose and then the node. The physics requirement is recorded from
// the active flag whether or not upstream evaluation succeeded.
func (n *RagdollNode) Update(deltaTime float32, needsPhysics *bool) bool {
	success := n.updateInputs(deltaTime, needsPhysics)
	if needsPhysics != nil && n.active {
		*needsPhysics = true
	}
	if !success {
		return false
	}
	return n.ProcessData(deltaTime)
}

// ProcessData moves the pose between the node and its ragdoll according to the active flag.
// Without a ragdoll the upstream pose is passed through.
func (n *RagdollNode) ProcessData(deltaTime float32) bool {
	if n.ragdoll != nil && n.active {
		n.ragdoll.UpdatePoseFromRagdoll()
		n.pose.CopyFrom(n.ragdoll.Pose())
		return true
	}

	in := n.Input(0)
	if in == nil {
		return false
	}
	if n.ragdoll != nil {
		n.ragdoll.SetPose(in.Pose())
		n.ragdoll.UpdateRagdollFromPose()
	}
	n.pose.CopyFrom(in.Pose())
	return true
}

// IsActive reports whether the ragdoll drives the pose.
func (n *RagdollNode) IsActive() bool {
	return n.active
}

// SetActive switches between animation driving the ragdoll (false) and the ragdoll driving the pose (true).
//
// Parameters:
//   - active: the new mode
func (n *RagdollNode) SetActive(active bool) {
	n.active = active
}

// Ragdoll returns the ragdoll this node is connected to, or nil.
func (n *RagdollNode) Ragdoll() ragdoll.Ragdoll {
	return n.ragdoll
}

// SetRagdoll connects the node to a ragdoll. The ragdoll must outlive the node.
//
// Parameters:
//   - r: the ragdoll, or nil
func (n *RagdollNode) SetRagdoll(r ragdoll.Ragdoll) {
	n.ragdoll = r
}

// IsRagdollValid reports whether a ragdoll is connected.
func (n *RagdollNode) IsRagdollValid() bool {
	return n.ragdoll != nil
}
