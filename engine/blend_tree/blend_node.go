package blend_tree

import (
	"github.com/Carmen-Shannon/oxy-blend/engine/skeleton"
)

// BlendNode defines the contract shared by every node of a BlendTree.
//
// A node owns a cached pose and up to MaxInputs handles to other nodes of the same tree.
// The set of implementations is closed: OutputNode, ClipNode, LinearBlendNode,
// LinearBlendSyncNode, TransitionNode and RagdollNode. Use NodeAs to get at a concrete kind.
type BlendNode interface {
	// ID returns the node's handle in its tree.
	//
	// Returns:
	//   - NodeID: the handle
	ID() NodeID

	// Type returns the node's kind.
	//
	// Returns:
	//   - NodeType: the node type
	Type() NodeType

	// Inputs returns the handles wired into each slot. Empty slots hold InvalidNodeID.
	//
	// Returns:
	//   - [MaxInputs]NodeID: the input handles
	Inputs() [MaxInputs]NodeID

	// Input resolves the node wired into a slot.
	//
	// Parameters:
	//   - slot: the input slot
	//
	// Returns:
	//   - BlendNode: the input node, or nil if the slot is empty or out of range
	Input(slot int) BlendNode

	// SetInput wires a node into a slot. Passing nil clears the slot.
	// Nodes from another tree and, for synchronized kinds, nodes that are not clips are rejected.
	//
	// Parameters:
	//   - slot: the input slot in [0, MaxInputs)
	//   - input: the node to wire, or nil
	//
	// Returns:
	//   - bool: true if the slot was assigned
	SetInput(slot int, input BlendNode) bool

	// AddInput wires a node into the first empty slot.
	//
	// Parameters:
	//   - input: the node to wire
	//
	// Returns:
	//   - bool: true if a free slot accepted the node
	AddInput(input BlendNode) bool

	// RemoveInput clears the first slot holding the given node.
	//
	// Parameters:
	//   - input: the node to unwire
	//
	// Returns:
	//   - bool: true if a slot was cleared
	RemoveInput(input BlendNode) bool

	// Update evaluates the node's inputs depth-first and then the node itself.
	// ProcessData only runs when every wired input succeeded. Ragdoll nodes OR their physics
	// requirement into needsPhysics; nothing ever clears it.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//   - needsPhysics: the per-frame physics flag to accumulate into, may be nil
	//
	// Returns:
	//   - bool: true if the node and all of its evaluated inputs succeeded
	Update(deltaTime float32, needsPhysics *bool) bool

	// ProcessData computes the node's own pose from its inputs' cached poses.
	// On failure the cached pose keeps its previous value.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - bool: true on success
	ProcessData(deltaTime float32) bool

	// Pose returns the most recently computed pose. Before the first Update it holds the bind pose.
	//
	// Returns:
	//   - *skeleton.Pose: the cached pose, owned by the node
	Pose() *skeleton.Pose

	base() *baseNode
}

// baseNode carries the state common to every node kind.
type baseNode struct {
	id       NodeID
	nodeType NodeType
	tree     *blendTree
	inputs   [MaxInputs]NodeID
	pose     *skeleton.Pose
	bindPose *skeleton.Pose

	// accepts narrows which nodes may be wired in; nil accepts everything.
	accepts func(BlendNode) bool
}

func newBaseNode(tree *blendTree, id NodeID, nodeType NodeType) baseNode {
	b := baseNode{
		id:       id,
		nodeType: nodeType,
		tree:     tree,
		pose:     tree.bindPose.Clone(),
		bindPose: tree.bindPose,
	}
	for i := range b.inputs {
		b.inputs[i] = InvalidNodeID
	}
	return b
}

func (b *baseNode) base() *baseNode {
	return b
}

func (b *baseNode) ID() NodeID {
	return b.id
}

func (b *baseNode) Type() NodeType {
	return b.nodeType
}

func (b *baseNode) Inputs() [MaxInputs]NodeID {
	return b.inputs
}

func (b *baseNode) Input(slot int) BlendNode {
	if slot < 0 || slot >= MaxInputs || b.tree == nil {
		return nil
	}
	return b.tree.lookup(b.inputs[slot])
}

func (b *baseNode) SetInput(slot int, input BlendNode) bool {
	if slot < 0 || slot >= MaxInputs {
		return false
	}
	if input == nil {
		b.inputs[slot] = InvalidNodeID
		return true
	}
	if b.tree == nil || input.base().tree != b.tree {
		return false
	}
	if b.accepts != nil && !b.accepts(input) {
		return false
	}
	b.inputs[slot] = input.ID()
	return true
}

func (b *baseNode) AddInput(input BlendNode) bool {
	for slot := range b.inputs {
		if b.Input(slot) == nil {
			return b.SetInput(slot, input)
		}
	}
	return false
}

func (b *baseNode) RemoveInput(input BlendNode) bool {
	if input == nil {
		return false
	}
	for slot, id := range b.inputs {
		if id == input.ID() {
			b.inputs[slot] = InvalidNodeID
			return true
		}
	}
	return false
}

func (b *baseNode) Pose() *skeleton.Pose {
	return b.pose
}

// updateSlot updates the node wired into a slot. An empty slot counts as success.
func (b *baseNode) updateSlot(slot int, deltaTime float32, needsPhysics *bool) bool {
	in := b.Input(slot)
	if in == nil {
		return true
	}
	return in.Update(deltaTime, needsPhysics)
}

// updateInputs updates every wired input in slot order. All inputs are visited even after a failure.
func (b *baseNode) updateInputs(deltaTime float32, needsPhysics *bool) bool {
	success := true
	for slot := range b.inputs {
		success = b.updateSlot(slot, deltaTime, needsPhysics) && success
	}
	return success
}

// clearReferences drops every slot that points at id.
func (b *baseNode) clearReferences(id NodeID) int {
	cleared := 0
	for slot := range b.inputs {
		if b.inputs[slot] == id {
			b.inputs[slot] = InvalidNodeID
			cleared++
		}
	}
	return cleared
}

// detach severs the node from its tree once it has been removed.
func (b *baseNode) detach() {
	b.tree = nil
	for slot := range b.inputs {
		b.inputs[slot] = InvalidNodeID
	}
}
