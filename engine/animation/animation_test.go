package animation

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/engine/blend_tree"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/ragdoll"
	"github.com/Carmen-Shannon/oxy-blend/engine/skeleton"
	"github.com/Carmen-Shannon/oxy-blend/engine/tree_config"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBindPose(t *testing.T) *skeleton.Pose {
	t.Helper()
	skel, err := skeleton.NewSkeleton([]skeleton.Joint{
		{Name: "hips", ParentIndex: -1, LocalTransform: skeleton.IdentityTransform()},
		{Name: "spine", ParentIndex: 0, LocalTransform: skeleton.Transform{
			Translation: mgl32.Vec3{0, 1, 0},
			Rotation:    mgl32.QuatIdent(),
			Scale:       mgl32.Vec3{1, 1, 1},
		}},
	})
	require.NoError(t, err)
	return skel.BindPose()
}

func newTestClip(name string, duration float32) clip.Clip {
	return clip.NewClip(
		clip.WithName(name),
		clip.WithDuration(duration),
		clip.WithChannels([]clip.Channel{{
			JointIndex: 0,
			PositionKeys: []clip.VectorKeyframe{
				{Time: 0, Value: mgl32.Vec3{}},
				{Time: duration, Value: mgl32.Vec3{1, 0, 0}},
			},
		}}),
	)
}

func newTestAnimation(t *testing.T, options ...AnimationBuilderOption) Animation {
	t.Helper()
	options = append([]AnimationBuilderOption{
		WithLogger(zerolog.Nop()),
		WithClips(newTestClip("walk", 1.0), newTestClip("run", 0.6)),
	}, options...)
	a, err := NewAnimation(newTestBindPose(t), options...)
	require.NoError(t, err)
	return a
}

func rootClip(t *testing.T, a Animation) *blend_tree.ClipNode {
	t.Helper()
	n, ok := blend_tree.NodeAs[*blend_tree.ClipNode](a.Tree(), a.Tree().Root().Inputs()[0])
	require.True(t, ok, "output node is not fed by a clip")
	return n
}

func TestNewAnimation_PlaysFirstClip(t *testing.T) {
	a := newTestAnimation(t, WithName("xbot"))

	assert.Equal(t, "xbot", a.Name())
	assert.Equal(t, []string{"walk", "run"}, a.ClipNames())
	assert.Equal(t, "walk", rootClip(t, a).Clip().Name())
	assert.Equal(t, 2, a.Tree().Len())

	assert.True(t, a.Update(0.5))
	assert.False(t, a.NeedsPhysics())
	assert.InDelta(t, 0.5, a.Pose().Local()[0].Translation.X(), 1e-5)
}

func TestNewAnimation_DefaultClip(t *testing.T) {
	a := newTestAnimation(t, WithDefaultClip("run"))
	assert.Equal(t, "run", rootClip(t, a).Clip().Name())

	_, err := NewAnimation(newTestBindPose(t), WithLogger(zerolog.Nop()), WithDefaultClip("swim"))
	assert.True(t, errors.Is(err, errUnknownClip))
}

func TestNewAnimation_NoClipsHoldsBindPose(t *testing.T) {
	bind := newTestBindPose(t)
	a, err := NewAnimation(bind, WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	require.True(t, a.Update(0.1))
	assert.Equal(t, bind.Local(), a.Pose().Local())
}

func TestNewAnimation_NilBindPose(t *testing.T) {
	_, err := NewAnimation(nil)
	assert.ErrorIs(t, err, errNilBindPose)
}

func TestAnimation_TransitionToCollapsesWhenComplete(t *testing.T) {
	a := newTestAnimation(t)

	require.NoError(t, a.TransitionTo("run", 0.5, blend_tree.TransitionSmooth))
	assert.True(t, a.IsTransitioning())
	assert.Equal(t, 4, a.Tree().Len())

	require.True(t, a.Update(0.25))
	assert.InDelta(t, 0.5, a.TransitionProgress(), 1e-5)
	assert.True(t, a.IsTransitioning())

	require.True(t, a.Update(0.25))
	assert.False(t, a.IsTransitioning())
	assert.Equal(t, float32(0), a.TransitionProgress())
	assert.Equal(t, "run", rootClip(t, a).Clip().Name())
	assert.Equal(t, float32(1), rootClip(t, a).PlaybackSpeed())
	assert.Equal(t, 2, a.Tree().Len())

	require.True(t, a.Update(0.1))
}

func TestAnimation_TransitionUndefinedCutsOnNextUpdate(t *testing.T) {
	a := newTestAnimation(t)

	require.NoError(t, a.TransitionTo("run", 2, blend_tree.TransitionUndefined))
	assert.False(t, a.IsTransitioning())
	require.True(t, a.Update(0.1))
	assert.Equal(t, "run", rootClip(t, a).Clip().Name())
	assert.Equal(t, 2, a.Tree().Len())
}

func TestAnimation_TransitionWhileTransitioning(t *testing.T) {
	a := newTestAnimation(t)

	require.NoError(t, a.TransitionTo("run", 1, blend_tree.TransitionSmoothSync))
	a.Update(0.1)
	require.NoError(t, a.TransitionTo("walk", 1, blend_tree.TransitionFrozen))

	assert.True(t, a.IsTransitioning())
	assert.Equal(t, 4, a.Tree().Len())
	tn, ok := blend_tree.NodeAs[*blend_tree.TransitionNode](a.Tree(), a.Tree().Root().Inputs()[0])
	require.True(t, ok)
	from, _ := tn.Input(0).(*blend_tree.ClipNode)
	require.NotNil(t, from)
	assert.Equal(t, "run", from.Clip().Name())
}

func TestAnimation_TransitionToUnknownClip(t *testing.T) {
	a := newTestAnimation(t)
	err := a.TransitionTo("swim", 1, blend_tree.TransitionSmooth)
	assert.True(t, errors.Is(err, errUnknownClip))
	assert.False(t, a.IsTransitioning())
}

func TestAnimation_CancelTransition(t *testing.T) {
	a := newTestAnimation(t)
	require.NoError(t, a.TransitionTo("run", 1, blend_tree.TransitionSmoothSync))
	a.Update(0.2)

	a.CancelTransition()
	assert.False(t, a.IsTransitioning())
	assert.Equal(t, 2, a.Tree().Len())
	assert.Equal(t, "walk", rootClip(t, a).Clip().Name())
	assert.Equal(t, float32(1), rootClip(t, a).PlaybackSpeed())
	assert.True(t, a.Update(0.1))
}

func TestAnimation_Play(t *testing.T) {
	a := newTestAnimation(t)
	require.NoError(t, a.TransitionTo("run", 1, blend_tree.TransitionSmooth))

	require.NoError(t, a.Play("run", false))
	assert.False(t, a.IsTransitioning())
	assert.Equal(t, 2, a.Tree().Len())
	n := rootClip(t, a)
	assert.Equal(t, "run", n.Clip().Name())
	assert.False(t, n.IsLooping())

	assert.Error(t, a.Play("swim", true))
}

func TestAnimation_BoneMatricesOfBindPose(t *testing.T) {
	bind := newTestBindPose(t)
	a, err := NewAnimation(bind, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.True(t, a.Update(0))

	matrices := a.BoneMatrices()
	require.Len(t, matrices, 2)
	for _, m := range matrices {
		assert.True(t, m.ApproxEqualThreshold(mgl32.Ident4(), 1e-5))
	}
}

const graphDocument = `
skeleton:
  joints:
    - name: hips
    - name: spine
      parent: hips
      translation: [0, 1, 0]
clips:
  - name: walk
    duration: 1
  - name: run
    duration: 0.6
nodes:
  - { name: walk, type: clip, clip: walk }
  - { name: run, type: clip, clip: run }
  - { name: locomotion, type: linear_blend_sync, blend_factor: 0.25, inputs: [walk, run] }
  - { name: ragdoll, type: ragdoll, active: true, inputs: [locomotion] }
root: ragdoll
`

func newGraphAnimation(t *testing.T) Animation {
	t.Helper()
	doc, err := tree_config.Parse([]byte(graphDocument))
	require.NoError(t, err)
	skel, err := doc.BuildSkeleton()
	require.NoError(t, err)
	clips, err := doc.BuildClips(skel)
	require.NoError(t, err)

	bind := skel.BindPose()
	a, err := NewAnimation(bind,
		WithLogger(zerolog.Nop()),
		WithClips(clips["walk"], clips["run"]),
		WithGraph(doc),
		WithRagdoll(ragdoll.NewRagdoll(bind)),
	)
	require.NoError(t, err)
	return a
}

func TestAnimation_WithGraph(t *testing.T) {
	a := newGraphAnimation(t)

	id, ok := a.Node("locomotion")
	require.True(t, ok)
	sync, ok := blend_tree.NodeAs[*blend_tree.LinearBlendSyncNode](a.Tree(), id)
	require.True(t, ok)
	assert.Equal(t, float32(0.25), sync.BlendFactor())
	assert.NotNil(t, a.Ragdoll())

	assert.True(t, a.Update(0.1))
	assert.True(t, a.NeedsPhysics())

	// the Output node is fed by a ragdoll node, not a clip
	err := a.TransitionTo("run", 1, blend_tree.TransitionSmooth)
	assert.True(t, errors.Is(err, errNotClipSource))

	_, ok = a.Node("missing")
	assert.False(t, ok)
}
