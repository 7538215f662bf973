package skeleton

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(x, y, z float32) Transform {
	t := IdentityTransform()
	t.Translation = mgl32.Vec3{x, y, z}
	return t
}

func newChain(t *testing.T) *Skeleton {
	t.Helper()
	skel, err := NewSkeleton([]Joint{
		{Name: "hips", ParentIndex: -1, LocalTransform: at(0, 1, 0)},
		{Name: "spine", ParentIndex: 0, LocalTransform: at(0, 0.5, 0)},
		{Name: "head", ParentIndex: 1, LocalTransform: at(0, 0.25, 0)},
	})
	require.NoError(t, err)
	return skel
}

func TestNewSkeleton(t *testing.T) {
	skel := newChain(t)
	assert.Equal(t, 3, skel.JointCount())
	assert.Equal(t, int32(1), skel.FindJointIndex("spine"))
	assert.Equal(t, int32(-1), skel.FindJointIndex("tail"))

	// inverse bind of the head undoes its bind world position
	head := skel.Joint(2).InverseBindMatrix.Mul4x1(mgl32.Vec4{0, 1.75, 0, 1})
	assert.InDelta(t, 0, head.Y(), 1e-6)
}

func TestNewSkeleton_Errors(t *testing.T) {
	_, err := NewSkeleton(nil)
	assert.ErrorIs(t, err, errEmptySkeleton)

	_, err = NewSkeleton([]Joint{
		{Name: "a", ParentIndex: 1},
		{Name: "b", ParentIndex: -1},
	})
	assert.ErrorIs(t, err, errJointOrder)

	_, err = NewSkeleton([]Joint{
		{Name: "a", ParentIndex: -1},
		{Name: "a", ParentIndex: 0},
	})
	assert.ErrorIs(t, err, errDuplicateName)
}

func TestBindPose_Globals(t *testing.T) {
	pose := newChain(t).BindPose()
	assert.InDelta(t, 1.75, pose.Global()[2].Col(3).Y(), 1e-6)

	bones := pose.BoneMatrices(nil)
	require.Len(t, bones, 3)
	for i, m := range bones {
		assert.True(t, m.ApproxEqualThreshold(mgl32.Ident4(), 1e-5), "bone %d", i)
	}
}

func TestBlendLinear(t *testing.T) {
	skel := newChain(t)
	a := skel.BindPose()
	b := skel.BindPose()
	b.SetLocal(0, at(2, 1, 0))
	b.CalculateGlobalPose()

	out := skel.BindPose()
	out.BlendLinear(a, b, 0)
	assert.True(t, out.ApproxEqual(a, 0))
	out.BlendLinear(a, b, 1)
	assert.True(t, out.ApproxEqual(b, 0))

	out.BlendLinear(a, b, 0.5)
	assert.InDelta(t, 1, out.Local()[0].Translation.X(), 1e-6)
	assert.InDelta(t, 1, out.Global()[2].Col(3).X(), 1e-6)
}

func TestBlendTransforms_ShortestPath(t *testing.T) {
	a := IdentityTransform()
	b := IdentityTransform()
	// the same rotation as identity, on the opposite hemisphere
	b.Rotation = mgl32.Quat{W: -1}

	mid := BlendTransforms(a, b, 0.5)
	assert.InDelta(t, 1, mgl32.Abs(mid.Rotation.W), 1e-5)
}

func TestCalculateLocalPose_RoundTrip(t *testing.T) {
	skel := newChain(t)
	src := skel.BindPose()
	src.SetLocal(1, Transform{
		Translation: mgl32.Vec3{0, 0.5, 0},
		Rotation:    mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 0, 1}),
		Scale:       mgl32.Vec3{1, 1, 1},
	})
	src.CalculateGlobalPose()

	dst := skel.BindPose()
	dst.CalculateLocalPose(src.Global())
	assert.True(t, dst.ApproxEqual(src, 1e-4))
}

func TestCopyFromAndClone(t *testing.T) {
	skel := newChain(t)
	src := skel.BindPose()
	clone := src.Clone()
	src.SetLocal(0, at(5, 0, 0))

	assert.InDelta(t, 0, clone.Local()[0].Translation.X(), 1e-6)
	assert.Same(t, skel, clone.Skeleton())

	clone.CopyFrom(src)
	assert.True(t, clone.ApproxEqual(src, 0))
}

type constantSampler struct {
	joint int32
	value Transform
}

func (s constantSampler) SampleJoint(joint int32, _ float32, fallback Transform) Transform {
	if joint == s.joint {
		return s.value
	}
	return fallback
}

func TestSetFromClip_FallsBackToBind(t *testing.T) {
	skel := newChain(t)
	bind := skel.BindPose()

	out := &Pose{}
	out.SetFromClip(constantSampler{joint: 0, value: at(3, 1, 0)}, bind, 0)
	require.Equal(t, 3, out.JointCount())
	assert.InDelta(t, 3, out.Local()[0].Translation.X(), 1e-6)
	assert.Equal(t, bind.Local()[1], out.Local()[1])
	assert.InDelta(t, 3, out.Global()[2].Col(3).X(), 1e-6)
}
