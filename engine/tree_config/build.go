package tree_config

import (
	"cmp"
	"fmt"

	"github.com/Carmen-Shannon/oxy-blend/engine/blend_tree"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/ragdoll"
	"github.com/Carmen-Shannon/oxy-blend/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// BuildSkeleton creates the skeleton described by the document.
//
// Returns:
//   - *skeleton.Skeleton: the skeleton
//   - error: an error if a parent does not resolve or the joints are rejected
func (d *Document) BuildSkeleton() (*skeleton.Skeleton, error) {
	index := make(map[string]int32, len(d.Skeleton.Joints))
	joints := make([]skeleton.Joint, len(d.Skeleton.Joints))

	for i, spec := range d.Skeleton.Joints {
		parent := int32(-1)
		if spec.Parent != "" {
			p, ok := index[spec.Parent]
			if !ok {
				return nil, fmt.Errorf("joint %q parent %q: %w", spec.Name, spec.Parent, errUnknownJoint)
			}
			parent = p
		}
		joints[i] = skeleton.Joint{
			Name:        spec.Name,
			ParentIndex: parent,
			LocalTransform: skeleton.Transform{
				Translation: toVec3(spec.Translation, mgl32.Vec3{}),
				Rotation:    toQuat(spec.Rotation),
				Scale:       toVec3(spec.Scale, mgl32.Vec3{1, 1, 1}),
			},
		}
		index[spec.Name] = int32(i)
	}

	skel, err := skeleton.NewSkeleton(joints)
	if err != nil {
		return nil, fmt.Errorf("failed to build skeleton: %w", err)
	}
	return skel, nil
}

// BuildClips creates every clip of the document, resolving channel joints against skel.
//
// Parameters:
//   - skel: the skeleton the clips animate
//
// Returns:
//   - map[string]clip.Clip: the clips by name
//   - error: an error if a channel names a joint the skeleton does not have
func (d *Document) BuildClips(skel *skeleton.Skeleton) (map[string]clip.Clip, error) {
	clips := make(map[string]clip.Clip, len(d.Clips))
	for _, spec := range d.Clips {
		channels := make([]clip.Channel, 0, len(spec.Channels))
		for _, ch := range spec.Channels {
			joint := skel.FindJointIndex(ch.Joint)
			if joint < 0 {
				return nil, fmt.Errorf("clip %q channel %q: %w", spec.Name, ch.Joint, errUnknownJoint)
			}
			channels = append(channels, toChannel(joint, ch))
		}

		options := []clip.ClipBuilderOption{
			clip.WithName(spec.Name),
			clip.WithStartOffset(spec.StartOffset),
			clip.WithChannels(channels),
		}
		if category, ok := clip.ParseCategory(spec.Category); ok {
			options = append(options, clip.WithCategory(category))
		}
		if spec.Duration != nil {
			options = append(options, clip.WithDuration(*spec.Duration))
		}
		clips[spec.Name] = clip.NewClip(options...)
	}
	return clips, nil
}

// Build adds the document's nodes to tree, wires their inputs and connects Root to the Output node.
// Ragdoll nodes are connected to r when it is not nil. On error every node Build added is removed
// again, so the tree is left as it was passed in.
//
// Parameters:
//   - tree: the tree to populate
//   - clips: the clips clip nodes refer to, usually from BuildClips
//   - r: the ragdoll for ragdoll nodes, or nil
//
// Returns:
//   - map[string]blend_tree.NodeID: the handle of every declared node by name
//   - error: an error if the document is invalid, the tree runs out of capacity or a node rejects its input
func (d *Document) Build(tree blend_tree.BlendTree, clips map[string]clip.Clip, r ragdoll.Ragdoll) (map[string]blend_tree.NodeID, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}

	ids := make(map[string]blend_tree.NodeID, len(d.Nodes))
	if err := d.populate(tree, ids, clips, r); err != nil {
		for _, id := range ids {
			tree.RemoveAndFreeNode(tree.Node(id))
		}
		return nil, err
	}
	return ids, nil
}

func (d *Document) populate(tree blend_tree.BlendTree, ids map[string]blend_tree.NodeID, clips map[string]clip.Clip, r ragdoll.Ragdoll) error {
	for _, spec := range d.Nodes {
		nodeType, _ := blend_tree.ParseNodeType(spec.Type)
		id := tree.AddNode(nodeType)
		if id == blend_tree.InvalidNodeID {
			return fmt.Errorf("node %q: %w", spec.Name, errTreeFull)
		}
		ids[spec.Name] = id

		if err := configure(tree.Node(id), spec, clips, r); err != nil {
			return err
		}
	}

	for _, spec := range d.Nodes {
		for slot, in := range spec.Inputs {
			if !tree.ConnectNode(ids[in], slot, ids[spec.Name]) {
				return fmt.Errorf("node %q slot %d input %q: %w", spec.Name, slot, in, errInputRejected)
			}
		}
	}
	if !tree.ConnectToRoot(ids[d.Root]) {
		return fmt.Errorf("root %q: %w", d.Root, errInputRejected)
	}
	return nil
}

func configure(node blend_tree.BlendNode, spec NodeSpec, clips map[string]clip.Clip, r ragdoll.Ragdoll) error {
	switch n := node.(type) {
	case *blend_tree.ClipNode:
		if spec.Clip != "" {
			c, ok := clips[spec.Clip]
			if !ok {
				return fmt.Errorf("node %q clip %q: %w", spec.Name, spec.Clip, errUnknownClip)
			}
			n.SetClip(c)
		}
		if spec.Speed != nil {
			n.SetPlaybackSpeed(*spec.Speed)
		}
		if spec.Looping != nil {
			n.SetLooping(*spec.Looping)
		}
	case *blend_tree.LinearBlendNode:
		n.SetBlendFactor(spec.BlendFactor)
	case *blend_tree.LinearBlendSyncNode:
		n.SetBlendFactor(spec.BlendFactor)
	case *blend_tree.TransitionNode:
		style, _ := blend_tree.ParseTransitionType(cmp.Or(spec.Transition, blend_tree.TransitionUndefined.String()))
		n.SetTransitionType(style)
		if spec.TransitionTime != nil {
			n.SetTransitionTime(*spec.TransitionTime)
		}
	case *blend_tree.RagdollNode:
		if r != nil {
			n.SetRagdoll(r)
		}
		n.SetActive(spec.Active)
	}
	return nil
}

func toChannel(joint int32, spec ChannelSpec) clip.Channel {
	ch := clip.Channel{JointIndex: joint}
	for _, k := range spec.Translation {
		ch.PositionKeys = append(ch.PositionKeys, clip.VectorKeyframe{Time: k.Time, Value: toVec3(k.Value, mgl32.Vec3{})})
	}
	for _, k := range spec.Rotation {
		ch.RotationKeys = append(ch.RotationKeys, clip.QuaternionKeyframe{Time: k.Time, Value: toQuat(k.Value)})
	}
	for _, k := range spec.Scale {
		ch.ScaleKeys = append(ch.ScaleKeys, clip.VectorKeyframe{Time: k.Time, Value: toVec3(k.Value, mgl32.Vec3{1, 1, 1})})
	}
	return ch
}

func toVec3(v []float32, fallback mgl32.Vec3) mgl32.Vec3 {
	if len(v) != 3 {
		return fallback
	}
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// toQuat reads x, y, z, w. Anything else is the identity.
func toQuat(v []float32) mgl32.Quat {
	if len(v) != 4 {
		return mgl32.QuatIdent()
	}
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize()
}
