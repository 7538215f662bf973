package blend_tree

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestSkeleton(t *testing.T) *skeleton.Skeleton {
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
	return skel
}

// newMoveClip returns a clip that moves the hips linearly from the origin to `to` over its duration.
func newMoveClip(name string, category clip.Category, duration float32, to mgl32.Vec3) clip.Clip {
	return clip.NewClip(
		clip.WithName(name),
		clip.WithCategory(category),
		clip.WithDuration(duration),
		clip.WithChannels([]clip.Channel{{
			JointIndex: 0,
			PositionKeys: []clip.VectorKeyframe{
				{Time: 0, Value: mgl32.Vec3{}},
				{Time: duration, Value: to},
			},
		}}),
	)
}

func newTestTree(t *testing.T, options ...BlendTreeBuilderOption) (BlendTree, *skeleton.Pose) {
	t.Helper()
	bind := newTestSkeleton(t).BindPose()
	options = append([]BlendTreeBuilderOption{WithLogger(zerolog.Nop())}, options...)
	return NewBlendTree(bind, options...), bind
}

func addNode[T BlendNode](t *testing.T, tree BlendTree, nodeType NodeType) T {
	t.Helper()
	id := tree.AddNode(nodeType)
	require.NotEqual(t, InvalidNodeID, id)
	n, ok := NodeAs[T](tree, id)
	require.True(t, ok)
	return n
}

func addClipNode(t *testing.T, tree BlendTree, c clip.Clip) *ClipNode {
	t.Helper()
	n := addNode[*ClipNode](t, tree, NodeTypeClip)
	n.SetClip(c)
	return n
}

func hipsTranslation(p *skeleton.Pose) mgl32.Vec3 {
	return p.Local()[0].Translation
}

type recordingObserver struct {
	calls        int
	lastOK       bool
	lastPhysics  bool
	lastDuration time.Duration
}

func (o *recordingObserver) ObserveUpdate(ok, needsPhysics bool, elapsed time.Duration) {
	o.calls++
	o.lastOK = ok
	o.lastPhysics = needsPhysics
	o.lastDuration = elapsed
}
