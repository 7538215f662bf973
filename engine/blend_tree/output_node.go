package blend_tree

// OutputNode is the root of every tree. Its pose is the tree's result.
type OutputNode struct {
	baseNode
}

var _ BlendNode = &OutputNode{}

func newOutputNode(tree *blendTree, id NodeID) *OutputNode {
	return &OutputNode{baseNode: newBaseNode(tree, id, NodeTypeOutput)}
}

func (n *OutputNode) Update(deltaTime float32, needsPhysics *bool) bool {
	if !n.updateInputs(deltaTime, needsPhysics) {
		return false
	}
	return n.ProcessData(deltaTime)
}

// ProcessData copies the pose of slot 0. It fails when slot 0 is empty.
func (n *OutputNode) ProcessData(deltaTime float32) bool {
	in := n.Input(0)
	if in == nil {
		return false
	}
	n.pose.CopyFrom(in.Pose())
	return true
}
