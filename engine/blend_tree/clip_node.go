package blend_tree

import (
	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
)

// ClipNode plays back a single clip. It has no inputs of its own.
type ClipNode struct {
	baseNode

	clip         clip.Clip
	elapsed      float32
	speed        float32
	looping      bool
	finished     bool
	justFinished bool
}

var _ BlendNode = &ClipNode{}

func newClipNode(tree *blendTree, id NodeID) *ClipNode {
	return &ClipNode{
		baseNode: newBaseNode(tree, id, NodeTypeClip),
		speed:    1,
		looping:  true,
	}
}

func (n *ClipNode) Update(deltaTime float32, needsPhysics *bool) bool {
	if !n.updateInputs(deltaTime, needsPhysics) {
		return false
	}
	return n.ProcessData(deltaTime)
}

// ProcessData advances playback and samples the clip against the bind pose.
//
// The result reports whether the clip is still playable: it is true while the clip loops or has
// not yet reached its end, and false on every frame after a non-looping clip finished. A node with
// no clip holds the bind pose and always succeeds.
func (n *ClipNode) ProcessData(deltaTime float32) bool {
	n.justFinished = false

	if n.clip == nil {
		n.pose.CopyFrom(n.bindPose)
		return true
	}

	duration := n.clip.Duration()
	if !n.finished {
		n.elapsed += deltaTime * n.speed
	}

	if n.looping {
		if n.elapsed >= duration || n.elapsed < 0 {
			n.elapsed = common.WrapTime(n.elapsed, duration)
		}
	} else {
		if n.elapsed < 0 {
			n.elapsed = 0
		}
		if n.elapsed >= duration {
			n.elapsed = duration
			if !n.finished {
				n.finished = true
				n.justFinished = true
			}
		}
	}

	n.pose.SetFromClip(n.clip, n.bindPose, n.elapsed+n.clip.StartOffset())
	return !n.finished
}

// Clip returns the clip being played, or nil.
func (n *ClipNode) Clip() clip.Clip {
	return n.clip
}

// SetClip assigns the clip to play and restarts playback from the beginning.
//
// Parameters:
//   - c: the clip, or nil to hold the bind pose
func (n *ClipNode) SetClip(c clip.Clip) {
	n.clip = c
	n.Restart()
}

// PlaybackSpeed returns the playback speed multiplier.
func (n *ClipNode) PlaybackSpeed() float32 {
	return n.speed
}

// SetPlaybackSpeed sets the playback speed multiplier (1.0 = normal, 0.5 = half speed).
//
// Parameters:
//   - speed: the speed multiplier
func (n *ClipNode) SetPlaybackSpeed(speed float32) {
	n.speed = speed
}

// IsLooping reports whether playback wraps around at the end of the clip.
func (n *ClipNode) IsLooping() bool {
	return n.looping
}

// SetLooping sets whether playback wraps around. Switching looping on revives a finished clip.
//
// Parameters:
//   - loop: true to loop
func (n *ClipNode) SetLooping(loop bool) {
	n.looping = loop
	if loop {
		n.finished = false
	}
}

// ElapsedTime returns the playback position in seconds, excluding the clip's start offset.
func (n *ClipNode) ElapsedTime() float32 {
	return n.elapsed
}

// SetElapsedTime moves the playback position. A finished clip becomes playable again when moved
// before its end.
//
// Parameters:
//   - t: the playback position in seconds
func (n *ClipNode) SetElapsedTime(t float32) {
	n.elapsed = t
	if n.clip == nil || t < n.clip.Duration() {
		n.finished = false
	}
}

// Restart rewinds playback to the beginning and clears the finished state.
func (n *ClipNode) Restart() {
	n.elapsed = 0
	n.finished = false
	n.justFinished = false
}

// Finished reports whether a non-looping clip has reached its end.
func (n *ClipNode) Finished() bool {
	return n.finished
}

// JustFinished reports whether the last ProcessData is the one in which the clip reached its end.
// It is true for exactly one frame per completion.
func (n *ClipNode) JustFinished() bool {
	return n.justFinished
}
