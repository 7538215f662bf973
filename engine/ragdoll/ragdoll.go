// Package ragdoll couples a skeleton pose to a set of physics rigid bodies.
// The physics world itself is owned and stepped elsewhere; this package only moves transforms
// between joints and bodies.
package ragdoll

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-blend/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// BodyNamePrefix is the prefix the modelling tool adds to exported rigid body names.
	BodyNamePrefix = "OBArmature_"

	// BodyNameSuffix is the suffix the modelling tool adds to exported rigid body names.
	BodyNameSuffix = "_hitbox"
)

// RigidBody is the slice of a physics engine body that a ragdoll needs.
type RigidBody interface {
	// WorldTransform returns the body's centre-of-mass world transform.
	WorldTransform() mgl32.Mat4

	// SetWorldTransform teleports the body to a centre-of-mass world transform.
	SetWorldTransform(m mgl32.Mat4)

	// SetLinearVelocity sets the body's linear velocity.
	SetLinearVelocity(v mgl32.Vec3)

	// SetAngularVelocity sets the body's angular velocity.
	SetAngularVelocity(v mgl32.Vec3)
}

// ragdoll is the implementation of the Ragdoll interface.
type ragdoll struct {
	bindPose *skeleton.Pose
	pose     *skeleton.Pose

	bodies        []RigidBody
	bodyOffsets   []mgl32.Mat4
	worldMatrices []mgl32.Mat4
	lastBodyWorld []mgl32.Mat4

	pendingBodies map[string]RigidBody
}

// Ragdoll defines the contract a blend tree uses to hand a pose to physics and read it back.
type Ragdoll interface {
	// UpdatePoseFromRagdoll rebuilds the ragdoll's pose from the current rigid body transforms.
	// Joints without a body keep their bind transform relative to their parent.
	UpdatePoseFromRagdoll()

	// UpdateRagdollFromPose moves every rigid body to follow the ragdoll's current pose.
	// Bodies get a linear velocity equal to their displacement since the previous call and no angular velocity.
	UpdateRagdollFromPose()

	// SetPose copies a pose into the ragdoll. The caller keeps ownership of p.
	//
	// Parameters:
	//   - p: the pose to copy
	SetPose(p *skeleton.Pose)

	// Pose returns the ragdoll's current pose. The returned pose is owned by the ragdoll.
	//
	// Returns:
	//   - *skeleton.Pose: the pose
	Pose() *skeleton.Pose

	// BodyCount returns how many joints are bound to a rigid body.
	//
	// Returns:
	//   - int: the bound body count
	BodyCount() int
}

var _ Ragdoll = &ragdoll{}

// NewRagdoll creates a Ragdoll for the skeleton of bindPose and binds the bodies given as options.
// Each body's offset from its joint is captured from the bind pose at construction.
//
// Parameters:
//   - bindPose: the skeleton's bind pose; copied
//   - options: variadic list of RagdollBuilderOption functions to configure the Ragdoll
//
// Returns:
//   - Ragdoll: the configured ragdoll
func NewRagdoll(bindPose *skeleton.Pose, options ...RagdollBuilderOption) Ragdoll {
	n := bindPose.JointCount()
	r := &ragdoll{
		bindPose:      bindPose.Clone(),
		pose:          bindPose.Clone(),
		bodies:        make([]RigidBody, n),
		bodyOffsets:   make([]mgl32.Mat4, n),
		worldMatrices: make([]mgl32.Mat4, n),
		lastBodyWorld: make([]mgl32.Mat4, n),
		pendingBodies: make(map[string]RigidBody),
	}
	for i := 0; i < n; i++ {
		r.bodyOffsets[i] = mgl32.Ident4()
		r.lastBodyWorld[i] = mgl32.Ident4()
		r.worldMatrices[i] = r.bindPose.Global()[i]
	}

	for _, opt := range options {
		opt(r)
	}

	skel := r.bindPose.Skeleton()
	for name, body := range r.pendingBodies {
		joint := skel.FindJointIndex(JointNameFromBody(name))
		if joint < 0 {
			continue
		}
		r.bind(int(joint), body)
	}
	r.pendingBodies = nil

	return r
}

// JointNameFromBody strips the exporter prefix and suffix from a rigid body name so it matches a joint name.
//
// Parameters:
//   - bodyName: the exported rigid body name, e.g. "OBArmature_Spine_hitbox"
//
// Returns:
//   - string: the joint name, e.g. "Spine"
func JointNameFromBody(bodyName string) string {
	name := strings.TrimPrefix(bodyName, BodyNamePrefix)
	return strings.TrimSuffix(name, BodyNameSuffix)
}

// bind attaches a body to a joint and records the body's offset in joint space:
// offset = inverse(joint world at bind) * body world.
func (r *ragdoll) bind(joint int, body RigidBody) {
	boneWorld := r.bindPose.Global()[joint]
	bodyWorld := body.WorldTransform()
	r.bodies[joint] = body
	r.bodyOffsets[joint] = boneWorld.Inv().Mul4(bodyWorld)
	r.lastBodyWorld[joint] = bodyWorld
}

func (r *ragdoll) UpdatePoseFromRagdoll() {
	skel := r.bindPose.Skeleton()
	bindLocal := r.bindPose.Local()

	for i := 0; i < skel.JointCount(); i++ {
		parent := skel.Joint(i).ParentIndex

		if body := r.bodies[i]; body != nil {
			// joint world = body world * inverse(offset)
			r.worldMatrices[i] = body.WorldTransform().Mul4(r.bodyOffsets[i].Inv())
			continue
		}

		local := bindLocal[i].Matrix()
		if parent < 0 {
			r.worldMatrices[i] = local
		} else {
			r.worldMatrices[i] = r.worldMatrices[parent].Mul4(local)
		}
	}

	r.pose.CalculateLocalPose(r.worldMatrices)
}

func (r *ragdoll) UpdateRagdollFromPose() {
	global := r.pose.Global()
	for i, body := range r.bodies {
		if body == nil {
			continue
		}
		bodyWorld := global[i].Mul4(r.bodyOffsets[i])
		body.SetWorldTransform(bodyWorld)
		body.SetLinearVelocity(bodyWorld.Col(3).Vec3().Sub(r.lastBodyWorld[i].Col(3).Vec3()))
		body.SetAngularVelocity(mgl32.Vec3{})
		r.lastBodyWorld[i] = bodyWorld
	}
}

func (r *ragdoll) SetPose(p *skeleton.Pose) {
	r.pose.CopyFrom(p)
}

func (r *ragdoll) Pose() *skeleton.Pose {
	return r.pose
}

func (r *ragdoll) BodyCount() int {
	count := 0
	for _, b := range r.bodies {
		if b != nil {
			count++
		}
	}
	return count
}
