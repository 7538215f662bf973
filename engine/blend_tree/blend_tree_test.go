package blend_tree

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlendTree(t *testing.T) {
	tree, bind := newTestTree(t)

	assert.Equal(t, 1, tree.Len())
	require.NotNil(t, tree.Root())
	assert.Equal(t, RootNodeID, tree.Root().ID())
	assert.Equal(t, NodeTypeOutput, tree.Root().Type())
	assert.Same(t, bind, tree.BindPose())

	// nothing wired into the Output node
	ok, needsPhysics := tree.Update(0.1)
	assert.False(t, ok)
	assert.False(t, needsPhysics)
}

func TestBlendTree_AddNodeHandlesAreUnique(t *testing.T) {
	tree, _ := newTestTree(t)
	seen := map[NodeID]bool{RootNodeID: true}
	for _, nt := range []NodeType{NodeTypeClip, NodeTypeLinearBlend, NodeTypeLinearBlendSync, NodeTypeTransition, NodeTypeRagdoll, NodeTypeOutput} {
		id := tree.AddNode(nt)
		require.NotEqual(t, InvalidNodeID, id)
		assert.False(t, seen[id])
		seen[id] = true
		assert.Equal(t, nt, tree.Node(id).Type())
	}
	assert.Equal(t, 7, tree.Len())
}

func TestBlendTree_Capacity(t *testing.T) {
	tree, _ := newTestTree(t)
	for tree.Len() < MaxNodes {
		require.NotEqual(t, InvalidNodeID, tree.AddNode(NodeTypeClip))
	}

	assert.Equal(t, InvalidNodeID, tree.AddNode(NodeTypeClip))
	assert.Equal(t, MaxNodes, tree.Len())
}

func TestBlendTree_WithMaxNodes(t *testing.T) {
	tree, _ := newTestTree(t, WithMaxNodes(2))
	require.NotEqual(t, InvalidNodeID, tree.AddNode(NodeTypeClip))
	assert.Equal(t, InvalidNodeID, tree.AddNode(NodeTypeClip))
}

func TestBlendTree_AddNodeUnknownTypePanics(t *testing.T) {
	tree, _ := newTestTree(t)
	assert.Panics(t, func() { tree.AddNode(NodeTypeUndefined) })
	assert.Panics(t, func() { tree.AddNode(NodeType(42)) })
	assert.Equal(t, 1, tree.Len())
}

func TestBlendTree_AddNodeUnknownTypePanicsWhenFull(t *testing.T) {
	tree, _ := newTestTree(t, WithMaxNodes(1))
	require.Equal(t, InvalidNodeID, tree.AddNode(NodeTypeClip))
	assert.Panics(t, func() { tree.AddNode(NodeType(42)) })
	assert.Panics(t, func() { tree.AddNode(NodeTypeUndefined) })
	assert.Equal(t, 1, tree.Len())
}

func TestBlendTree_RemoveClearsReferences(t *testing.T) {
	tree, blend, c0, c1 := newBlendFixture(t)

	require.True(t, tree.RemoveAndFreeNode(c0))
	assert.Nil(t, tree.Node(c0.ID()))
	assert.Nil(t, blend.Input(0))
	assert.Equal(t, InvalidNodeID, blend.Inputs()[0])
	assert.Equal(t, c1.ID(), blend.Inputs()[1])
	_, ok := NodeAs[*ClipNode](tree, c0.ID())
	assert.False(t, ok)

	// second removal is a no-op, and the detached node can no longer be wired
	assert.False(t, tree.RemoveAndFreeNode(c0))
	assert.False(t, blend.SetInput(0, c0))

	// the blend keeps working from its remaining input
	ok, _ = tree.Update(0.25)
	assert.True(t, ok)
	assert.Equal(t, c1.Pose().Local(), blend.Pose().Local())
}

func TestBlendTree_RemoveRoot(t *testing.T) {
	tree, _, _, _ := newBlendFixture(t)

	require.True(t, tree.RemoveAndFreeNode(tree.Root()))
	ok, _ := tree.Update(0.1)
	assert.False(t, ok)
}

func TestBlendTree_RejectsForeignNodes(t *testing.T) {
	tree, _ := newTestTree(t)
	other, _ := newTestTree(t)
	foreign := addNode[*ClipNode](t, other, NodeTypeClip)
	blend := addNode[*LinearBlendNode](t, tree, NodeTypeLinearBlend)

	assert.False(t, blend.SetInput(0, foreign))
	assert.False(t, tree.RemoveAndFreeNode(foreign))
	assert.False(t, tree.RemoveAndFreeNode(nil))
}

func TestBlendTree_SlotBounds(t *testing.T) {
	tree, _ := newTestTree(t)
	blend := addNode[*LinearBlendNode](t, tree, NodeTypeLinearBlend)
	c := addNode[*ClipNode](t, tree, NodeTypeClip)

	assert.False(t, blend.SetInput(-1, c))
	assert.False(t, blend.SetInput(MaxInputs, c))
	assert.Nil(t, blend.Input(MaxInputs))
	assert.False(t, tree.ConnectNode(c.ID(), 0, InvalidNodeID))
	assert.False(t, tree.ConnectNodes(blend.ID(), c.ID(), c.ID(), c.ID(), c.ID(), c.ID()))
}

func TestBlendTree_AddAndRemoveInput(t *testing.T) {
	tree, _ := newTestTree(t)
	blend := addNode[*LinearBlendNode](t, tree, NodeTypeLinearBlend)
	c := addNode[*ClipNode](t, tree, NodeTypeClip)

	for i := 0; i < MaxInputs; i++ {
		require.True(t, blend.AddInput(c))
	}
	assert.False(t, blend.AddInput(c))

	assert.True(t, blend.RemoveInput(c))
	assert.Equal(t, InvalidNodeID, blend.Inputs()[0])
	assert.True(t, blend.AddInput(c))
	assert.Equal(t, c.ID(), blend.Inputs()[0])
}

func TestBlendTree_FailureDoesNotSkipSiblings(t *testing.T) {
	tree, _ := newTestTree(t)
	broken := addNode[*LinearBlendNode](t, tree, NodeTypeLinearBlend)
	c := addClipNode(t, tree, newMoveClip("walk", clip.CategoryWalk, 1.0, mgl32.Vec3{1, 0, 0}))
	blend := addNode[*LinearBlendNode](t, tree, NodeTypeLinearBlend)
	require.True(t, tree.ConnectNodes(blend.ID(), broken.ID(), c.ID()))
	require.True(t, tree.ConnectToRoot(blend.ID()))
	before := tree.OutputPose().Clone()

	ok, _ := tree.Update(0.25)
	assert.False(t, ok)
	assert.InDelta(t, 0.25, c.ElapsedTime(), 1e-5)
	// failing nodes keep their previous output
	assert.Equal(t, before.Local(), tree.OutputPose().Local())
}

func TestBlendTree_NodeAsWrongKind(t *testing.T) {
	tree, _ := newTestTree(t)
	id := tree.AddNode(NodeTypeLinearBlend)

	_, ok := NodeAs[*ClipNode](tree, id)
	assert.False(t, ok)
	n, ok := NodeAs[*LinearBlendNode](tree, id)
	assert.True(t, ok)
	assert.Equal(t, id, n.ID())
}

func TestBlendTree_ObserverSeesEveryUpdate(t *testing.T) {
	obs := &recordingObserver{}
	tree, _ := newTestTree(t, WithObserver(obs))
	c := addClipNode(t, tree, newMoveClip("walk", clip.CategoryWalk, 1.0, mgl32.Vec3{1, 0, 0}))

	tree.Update(0.1)
	assert.Equal(t, 1, obs.calls)
	assert.False(t, obs.lastOK)

	require.True(t, tree.ConnectToRoot(c.ID()))
	tree.Update(0.1)
	assert.Equal(t, 2, obs.calls)
	assert.True(t, obs.lastOK)
	assert.False(t, obs.lastPhysics)
	assert.GreaterOrEqual(t, int64(obs.lastDuration), int64(0))
}

func TestBlendTree_NodesIsACopy(t *testing.T) {
	tree, _ := newTestTree(t)
	tree.AddNode(NodeTypeClip)

	nodes := tree.Nodes()
	require.Len(t, nodes, 2)
	nodes[0] = nil
	assert.NotNil(t, tree.Nodes()[0])
}

func TestParseNodeType(t *testing.T) {
	for _, nt := range []NodeType{NodeTypeOutput, NodeTypeClip, NodeTypeLinearBlend, NodeTypeLinearBlendSync, NodeTypeTransition, NodeTypeRagdoll} {
		got, ok := ParseNodeType(nt.String())
		assert.True(t, ok, nt.String())
		assert.Equal(t, nt, got)
	}
	_, ok := ParseNodeType("blend_space")
	assert.False(t, ok)
	assert.Equal(t, "undefined", NodeTypeUndefined.String())
}

func TestParseTransitionType(t *testing.T) {
	got, ok := ParseTransitionType("smooth_sync")
	require.True(t, ok)
	assert.Equal(t, TransitionSmoothSync, got)
	assert.True(t, got.Synchronized())
	assert.False(t, TransitionFrozen.Synchronized())

	_, ok = ParseTransitionType("crossfade")
	assert.False(t, ok)
}
