package tree_config

// Document is the YAML description of a character: its skeleton, the clips it can play and the
// blend graph evaluated on top of them.
//
// The Output node is implicit. Root names the declared node wired into it.
type Document struct {
	Skeleton SkeletonSpec `yaml:"skeleton"`
	Clips    []ClipSpec   `yaml:"clips" validate:"dive"`
	Nodes    []NodeSpec   `yaml:"nodes" validate:"required,min=1,dive"`
	Root     string       `yaml:"root" validate:"required"`
}

// SkeletonSpec lists the joints of the skeleton. Parents must be declared before their children.
type SkeletonSpec struct {
	Joints []JointSpec `yaml:"joints" validate:"required,min=1,dive"`
}

// JointSpec describes one joint and its bind-pose local transform.
// Rotation is a quaternion in x, y, z, w order.
type JointSpec struct {
	Name        string    `yaml:"name" validate:"required"`
	Parent      string    `yaml:"parent"`
	Translation []float32 `yaml:"translation" validate:"omitempty,len=3"`
	Rotation    []float32 `yaml:"rotation" validate:"omitempty,len=4"`
	Scale       []float32 `yaml:"scale" validate:"omitempty,len=3"`
}

// ClipSpec describes an animation clip. Duration defaults to the last keyframe time minus the
// start offset and Category defaults to a guess from the name.
type ClipSpec struct {
	Name        string        `yaml:"name" validate:"required"`
	Category    string        `yaml:"category" validate:"omitempty,oneof=undefined idle walk run jump fall"`
	Duration    *float32      `yaml:"duration" validate:"omitempty,gte=0"`
	StartOffset float32       `yaml:"start_offset" validate:"gte=0"`
	Channels    []ChannelSpec `yaml:"channels" validate:"dive"`
}

// ChannelSpec holds the keyframes of one joint.
type ChannelSpec struct {
	Joint       string              `yaml:"joint" validate:"required"`
	Translation []VectorKeySpec     `yaml:"translation" validate:"dive"`
	Rotation    []QuaternionKeySpec `yaml:"rotation" validate:"dive"`
	Scale       []VectorKeySpec     `yaml:"scale" validate:"dive"`
}

// VectorKeySpec is a translation or scale keyframe.
type VectorKeySpec struct {
	Time  float32   `yaml:"time" validate:"gte=0"`
	Value []float32 `yaml:"value" validate:"len=3"`
}

// QuaternionKeySpec is a rotation keyframe in x, y, z, w order.
type QuaternionKeySpec struct {
	Time  float32   `yaml:"time" validate:"gte=0"`
	Value []float32 `yaml:"value" validate:"len=4"`
}

// NodeSpec describes one blend node. Which fields apply depends on Type.
type NodeSpec struct {
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"required,oneof=clip linear_blend linear_blend_sync transition ragdoll"`

	// clip
	Clip    string   `yaml:"clip"`
	Speed   *float32 `yaml:"speed"`
	Looping *bool    `yaml:"looping"`

	// linear_blend, linear_blend_sync
	BlendFactor float32 `yaml:"blend_factor" validate:"gte=0,lte=1"`

	// transition
	Transition     string   `yaml:"transition" validate:"omitempty,oneof=undefined frozen frozen_sync smooth smooth_sync"`
	TransitionTime *float32 `yaml:"transition_time" validate:"omitempty,gte=0"`

	// ragdoll
	Active bool `yaml:"active"`

	Inputs []string `yaml:"inputs" validate:"max=4,dive,required"`
}
