package blend_tree

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlendFixture(t *testing.T) (BlendTree, *LinearBlendNode, *ClipNode, *ClipNode) {
	t.Helper()
	tree, _ := newTestTree(t)
	c0 := addClipNode(t, tree, newMoveClip("walk", clip.CategoryWalk, 1.0, mgl32.Vec3{2, 0, 0}))
	c1 := addClipNode(t, tree, newMoveClip("run", clip.CategoryRun, 1.0, mgl32.Vec3{0, 4, 0}))
	blend := addNode[*LinearBlendNode](t, tree, NodeTypeLinearBlend)
	require.True(t, tree.ConnectNodes(blend.ID(), c0.ID(), c1.ID()))
	require.True(t, tree.ConnectToRoot(blend.ID()))
	return tree, blend, c0, c1
}

func TestLinearBlendNode_EndpointsReproduceInputs(t *testing.T) {
	tree, blend, c0, c1 := newBlendFixture(t)

	blend.SetBlendFactor(0)
	ok, _ := tree.Update(0.25)
	require.True(t, ok)
	assert.Equal(t, c0.Pose().Local(), blend.Pose().Local())
	assert.Equal(t, c0.Pose().Local(), tree.OutputPose().Local())

	blend.SetBlendFactor(1)
	ok, _ = tree.Update(0.25)
	require.True(t, ok)
	assert.Equal(t, c1.Pose().Local(), blend.Pose().Local())
}

func TestLinearBlendNode_Midpoint(t *testing.T) {
	tree, blend, _, _ := newBlendFixture(t)

	blend.SetBlendFactor(0.5)
	ok, _ := tree.Update(0.5)
	require.True(t, ok)

	// walk is at (1,0,0) and run at (0,2,0) half way through
	got := hipsTranslation(blend.Pose())
	assert.InDelta(t, 0.5, got.X(), 1e-5)
	assert.InDelta(t, 1.0, got.Y(), 1e-5)
}

func TestLinearBlendNode_ClampsFactor(t *testing.T) {
	tree, _ := newTestTree(t)
	blend := addNode[*LinearBlendNode](t, tree, NodeTypeLinearBlend)

	blend.SetBlendFactor(-3)
	assert.Equal(t, float32(0), blend.BlendFactor())
	blend.SetBlendFactor(7)
	assert.Equal(t, float32(1), blend.BlendFactor())
}

func TestLinearBlendNode_SingleInputPassesThrough(t *testing.T) {
	tree, _ := newTestTree(t)
	c := addClipNode(t, tree, newMoveClip("walk", clip.CategoryWalk, 1.0, mgl32.Vec3{2, 0, 0}))
	blend := addNode[*LinearBlendNode](t, tree, NodeTypeLinearBlend)
	blend.SetBlendFactor(0.5)
	require.True(t, tree.ConnectNode(c.ID(), 1, blend.ID()))

	require.True(t, blend.Update(0.5, nil))
	assert.Equal(t, c.Pose().Local(), blend.Pose().Local())
}

func TestLinearBlendNode_NoInputsFailsAndKeepsPose(t *testing.T) {
	tree, blend, c0, _ := newBlendFixture(t)
	blend.SetBlendFactor(0)
	ok, _ := tree.Update(0.5)
	require.True(t, ok)
	before := blend.Pose().Clone()

	require.True(t, tree.RemoveAndFreeNode(c0))
	require.True(t, blend.SetInput(1, nil))

	ok, _ = tree.Update(0.5)
	assert.False(t, ok)
	assert.Equal(t, before.Local(), blend.Pose().Local())
}
