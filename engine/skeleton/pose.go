package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Sampler is anything that can produce a joint's local transform at a point in time.
// Clips implement it; joints the sampler has no data for must return the fallback unchanged.
type Sampler interface {
	// SampleJoint evaluates the local transform of a joint at the given time.
	//
	// Parameters:
	//   - joint: the joint index
	//   - time: the sample time in seconds
	//   - fallback: the transform to return when the sampler does not animate this joint
	//
	// Returns:
	//   - Transform: the sampled local transform
	SampleJoint(joint int32, time float32, fallback Transform) Transform
}

// Pose holds one local transform and one world matrix per joint of a skeleton.
// Poses are plain values owned by whoever allocated them; operations write into the receiver.
type Pose struct {
	skeleton *Skeleton
	local    []Transform
	global   []mgl32.Mat4
}

// Skeleton returns the skeleton this pose was built for.
//
// Returns:
//   - *Skeleton: the skeleton
func (p *Pose) Skeleton() *Skeleton {
	return p.skeleton
}

// JointCount returns the number of joints in the pose.
//
// Returns:
//   - int: the joint count
func (p *Pose) JointCount() int {
	return len(p.local)
}

// Local returns the per-joint local transforms. The slice is owned by the pose.
//
// Returns:
//   - []Transform: the local transforms
func (p *Pose) Local() []Transform {
	return p.local
}

// Global returns the per-joint world matrices computed by the last CalculateGlobalPose.
// The slice is owned by the pose.
//
// Returns:
//   - []mgl32.Mat4: the world matrices
func (p *Pose) Global() []mgl32.Mat4 {
	return p.global
}

// SetLocal replaces a single joint's local transform. Call CalculateGlobalPose afterwards.
//
// Parameters:
//   - joint: the joint index
//   - t: the new local transform
func (p *Pose) SetLocal(joint int, t Transform) {
	p.local[joint] = t
}

// CalculateGlobalPose resolves every joint's world matrix from the local transforms.
func (p *Pose) CalculateGlobalPose() {
	for i := range p.local {
		local := p.local[i].Matrix()
		parent := p.skeleton.joints[i].ParentIndex
		if parent < 0 {
			p.global[i] = local
		} else {
			p.global[i] = p.global[parent].Mul4(local)
		}
	}
}

// CalculateLocalPose rebuilds the local transforms from a set of world matrices and keeps
// those world matrices as the pose's global transforms.
//
// Parameters:
//   - world: one world matrix per joint
func (p *Pose) CalculateLocalPose(world []mgl32.Mat4) {
	for i := range p.local {
		parent := p.skeleton.joints[i].ParentIndex
		m := world[i]
		if parent >= 0 {
			m = world[parent].Inv().Mul4(m)
		}
		p.local[i] = TransformFromMatrix(m)
		p.global[i] = world[i]
	}
}

// CopyFrom overwrites the receiver with src. Storage is reused when the joint counts match.
//
// Parameters:
//   - src: the pose to copy
func (p *Pose) CopyFrom(src *Pose) {
	if p == src {
		return
	}
	p.skeleton = src.skeleton
	if len(p.local) != len(src.local) {
		p.local = make([]Transform, len(src.local))
		p.global = make([]mgl32.Mat4, len(src.global))
	}
	copy(p.local, src.local)
	copy(p.global, src.global)
}

// Clone returns an independent copy of the pose.
//
// Returns:
//   - *Pose: the copy
func (p *Pose) Clone() *Pose {
	c := &Pose{}
	c.CopyFrom(p)
	return c
}

// BlendLinear writes the interpolation of a and b at factor t into the receiver.
// A factor of 0 reproduces a exactly and a factor of 1 reproduces b exactly.
//
// Parameters:
//   - a: the pose at t == 0
//   - b: the pose at t == 1
//   - t: the blend factor, clamped to [0, 1]
func (p *Pose) BlendLinear(a, b *Pose, t float32) {
	if t <= 0 {
		p.CopyFrom(a)
		return
	}
	if t >= 1 {
		p.CopyFrom(b)
		return
	}

	n := min(len(a.local), len(b.local))
	if len(p.local) != n || p.skeleton != a.skeleton {
		p.skeleton = a.skeleton
		p.local = make([]Transform, n)
		p.global = make([]mgl32.Mat4, n)
	}
	for i := 0; i < n; i++ {
		p.local[i] = BlendTransforms(a.local[i], b.local[i], t)
	}
	p.CalculateGlobalPose()
}

// SetFromClip samples a clip for every joint at the given time. Joints the clip does not animate
// take their transform from the bind pose.
//
// Parameters:
//   - s: the clip sampler
//   - bind: the bind pose used as fallback
//   - time: the sample time in seconds (clip start offset already applied)
func (p *Pose) SetFromClip(s Sampler, bind *Pose, time float32) {
	if len(p.local) != len(bind.local) || p.skeleton != bind.skeleton {
		p.skeleton = bind.skeleton
		p.local = make([]Transform, len(bind.local))
		p.global = make([]mgl32.Mat4, len(bind.global))
	}
	for i := range bind.local {
		p.local[i] = s.SampleJoint(int32(i), time, bind.local[i])
	}
	p.CalculateGlobalPose()
}

// BoneMatrices computes the skinning matrices (world * inverse bind) for every joint.
//
// Parameters:
//   - out: destination slice, reused when large enough
//
// Returns:
//   - []mgl32.Mat4: one skinning matrix per joint
func (p *Pose) BoneMatrices(out []mgl32.Mat4) []mgl32.Mat4 {
	if cap(out) < len(p.global) {
		out = make([]mgl32.Mat4, len(p.global))
	}
	out = out[:len(p.global)]
	for i := range p.global {
		out[i] = p.global[i].Mul4(p.skeleton.joints[i].InverseBindMatrix)
	}
	return out
}

// ApproxEqual reports whether two poses have the same joint count and all local transforms
// match within epsilon.
//
// Parameters:
//   - o: the pose to compare against
//   - epsilon: the per-component tolerance
//
// Returns:
//   - bool: true if the poses match
func (p *Pose) ApproxEqual(o *Pose, epsilon float32) bool {
	if len(p.local) != len(o.local) {
		return false
	}
	for i := range p.local {
		a, b := p.local[i], o.local[i]
		if !a.Translation.ApproxEqualThreshold(b.Translation, epsilon) ||
			!a.Scale.ApproxEqualThreshold(b.Scale, epsilon) {
			return false
		}
		// q and -q encode the same rotation
		if d := a.Rotation.Dot(b.Rotation); d < 1-epsilon && d > -1+epsilon {
			return false
		}
	}
	return true
}
