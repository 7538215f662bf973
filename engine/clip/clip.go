// Package clip provides prerecorded joint animation curves that blend tree clip nodes play back.
// A Clip is immutable once built and safe to share between any number of trees.
package clip

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-blend/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// clip is the implementation of the Clip interface.
type clip struct {
	name         string
	category     Category
	duration     float32
	startOffset  float32
	channels     []Channel
	jointChannel map[int32]int
}

// Clip defines the read-only view of an animation clip.
type Clip interface {
	skeleton.Sampler

	// Name retrieves the clip identifier.
	//
	// Returns:
	//   - string: the clip name
	Name() string

	// Category retrieves the motion category tag used by synchronized blending.
	//
	// Returns:
	//   - Category: the clip category
	Category() Category

	// Duration returns the playable length of the clip in seconds.
	//
	// Returns:
	//   - float32: the duration
	Duration() float32

	// StartOffset returns the time inside the keyframe data where playback begins.
	//
	// Returns:
	//   - float32: the start offset in seconds
	StartOffset() float32

	// Channels returns the per-joint keyframe channels. The slice must not be modified.
	//
	// Returns:
	//   - []Channel: the channels
	Channels() []Channel
}

var _ Clip = &clip{}

// NewClip creates a new Clip configured by the provided options.
// When no duration is given it is taken from the latest keyframe timestamp minus the start offset.
//
// Parameters:
//   - options: variadic list of ClipBuilderOption functions to configure the Clip
//
// Returns:
//   - Clip: the configured clip
func NewClip(options ...ClipBuilderOption) Clip {
	c := &clip{
		duration: -1,
	}
	for _, opt := range options {
		opt(c)
	}

	c.jointChannel = make(map[int32]int, len(c.channels))
	var last float32
	for i := range c.channels {
		ch := &c.channels[i]
		c.jointChannel[ch.JointIndex] = i

		sort.SliceStable(ch.PositionKeys, func(a, b int) bool { return ch.PositionKeys[a].Time < ch.PositionKeys[b].Time })
		sort.SliceStable(ch.RotationKeys, func(a, b int) bool { return ch.RotationKeys[a].Time < ch.RotationKeys[b].Time })
		sort.SliceStable(ch.ScaleKeys, func(a, b int) bool { return ch.ScaleKeys[a].Time < ch.ScaleKeys[b].Time })

		if n := len(ch.PositionKeys); n > 0 {
			last = max(last, ch.PositionKeys[n-1].Time)
		}
		if n := len(ch.RotationKeys); n > 0 {
			last = max(last, ch.RotationKeys[n-1].Time)
		}
		if n := len(ch.ScaleKeys); n > 0 {
			last = max(last, ch.ScaleKeys[n-1].Time)
		}
	}

	if c.duration < 0 {
		c.duration = max(last-c.startOffset, 0)
	}
	if c.category == CategoryUndefined {
		c.category = CategoryFromName(c.name)
	}

	return c
}

func (c *clip) Name() string {
	return c.name
}

func (c *clip) Category() Category {
	return c.category
}

func (c *clip) Duration() float32 {
	return c.duration
}

func (c *clip) StartOffset() float32 {
	return c.startOffset
}

func (c *clip) Channels() []Channel {
	return c.channels
}

func (c *clip) SampleJoint(joint int32, time float32, fallback skeleton.Transform) skeleton.Transform {
	idx, ok := c.jointChannel[joint]
	if !ok {
		return fallback
	}
	ch := &c.channels[idx]

	out := fallback
	if len(ch.PositionKeys) > 0 {
		out.Translation = sampleVector(ch.PositionKeys, time)
	}
	if len(ch.RotationKeys) > 0 {
		out.Rotation = sampleQuaternion(ch.RotationKeys, time)
	}
	if len(ch.ScaleKeys) > 0 {
		out.Scale = sampleVector(ch.ScaleKeys, time)
	}
	return out
}

// bracket finds the pair of keyframe indices surrounding time and the interpolation factor between them.
// Times outside the key range clamp to the first or last key.
func bracket(count int, timeAt func(int) float32, time float32) (int, int, float32) {
	if time <= timeAt(0) {
		return 0, 0, 0
	}
	if time >= timeAt(count-1) {
		return count - 1, count - 1, 0
	}
	next := sort.Search(count, func(i int) bool { return timeAt(i) > time })
	prev := next - 1
	span := timeAt(next) - timeAt(prev)
	if span <= 0 {
		return next, next, 0
	}
	return prev, next, (time - timeAt(prev)) / span
}

func sampleVector(keys []VectorKeyframe, time float32) mgl32.Vec3 {
	a, b, t := bracket(len(keys), func(i int) float32 { return keys[i].Time }, time)
	if a == b {
		return keys[a].Value
	}
	va, vb := keys[a].Value, keys[b].Value
	return va.Add(vb.Sub(va).Mul(t))
}

func sampleQuaternion(keys []QuaternionKeyframe, time float32) mgl32.Quat {
	a, b, t := bracket(len(keys), func(i int) float32 { return keys[i].Time }, time)
	if a == b {
		return keys[a].Value.Normalize()
	}
	from := skeleton.Transform{Rotation: keys[a].Value.Normalize()}
	to := skeleton.Transform{Rotation: keys[b].Value.Normalize()}
	return skeleton.BlendTransforms(from, to, t).Rotation
}
