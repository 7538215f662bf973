// Package skeleton holds the joint hierarchy and pose types shared by every animation source.
// A Pose is a flat set of per-joint local transforms with their derived world (global) matrices.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	errEmptySkeleton = errors.New("skeleton has no joints")
	errJointOrder    = errors.New("joint parent must precede the joint")
	errDuplicateName = errors.New("duplicate joint name")
)

// --- Transform & Joint Types ---

// Transform represents a decomposed transform for animation interpolation.
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityTransform returns a transform with no translation, no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes the transform into a column-major 4x4 matrix as T * R * S.
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func (t Transform) Matrix() mgl32.Mat4 {
	tr := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	rot := t.Rotation.Normalize().Mat4()
	sc := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return tr.Mul4(rot).Mul4(sc)
}

// TransformFromMatrix decomposes an affine matrix without shear into translation, rotation and scale.
//
// Parameters:
//   - m: the column-major matrix to decompose
//
// Returns:
//   - Transform: the decomposed transform
func TransformFromMatrix(m mgl32.Mat4) Transform {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()

	rot := mgl32.Ident4()
	if sx != 0 {
		rot.SetCol(0, m.Col(0).Mul(1/sx))
	}
	if sy != 0 {
		rot.SetCol(1, m.Col(1).Mul(1/sy))
	}
	if sz != 0 {
		rot.SetCol(2, m.Col(2).Mul(1/sz))
	}
	rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})

	return Transform{
		Translation: m.Col(3).Vec3(),
		Rotation:    mgl32.Mat4ToQuat(rot).Normalize(),
		Scale:       mgl32.Vec3{sx, sy, sz},
	}
}

// BlendTransforms interpolates two transforms. Translation and scale are interpolated linearly,
// rotation uses a shortest-path spherical interpolation.
//
// Parameters:
//   - a: the transform at t == 0
//   - b: the transform at t == 1
//   - t: the interpolation factor
//
// Returns:
//   - Transform: the interpolated transform
func BlendTransforms(a, b Transform, t float32) Transform {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return Transform{
		Translation: a.Translation.Add(b.Translation.Sub(a.Translation).Mul(t)),
		Rotation:    slerpShortest(a.Rotation, b.Rotation, t),
		Scale:       a.Scale.Add(b.Scale.Sub(a.Scale).Mul(t)),
	}
}

// slerpShortest flips the target quaternion onto the same hemisphere as the source before slerping,
// so the interpolation never takes the long way around.
func slerpShortest(a, b mgl32.Quat, t float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = mgl32.Quat{W: -b.W, V: b.V.Mul(-1)}
	}
	return mgl32.QuatSlerp(a, b, t).Normalize()
}

// Joint represents a single joint in a skeleton hierarchy.
type Joint struct {
	// Name is the joint's identifier (for debugging, clip targeting and ragdoll body matching).
	Name string

	// ParentIndex is the index of the parent joint (-1 for root joints).
	ParentIndex int32

	// InverseBindMatrix transforms from model space to joint space at bind pose.
	// Left as the zero matrix it is derived from the bind pose by NewSkeleton.
	InverseBindMatrix mgl32.Mat4

	// LocalTransform is the joint's bind transform relative to its parent.
	LocalTransform Transform
}

// Skeleton represents a joint hierarchy. Joints are stored parents-first so a single forward
// pass is enough to resolve world transforms.
type Skeleton struct {
	joints      []Joint
	nameToIndex map[string]int32
}

// NewSkeleton validates and indexes a joint hierarchy.
// Joints whose InverseBindMatrix is the zero matrix get it computed from the bind pose.
//
// Parameters:
//   - joints: the joints, ordered so that every parent precedes its children
//
// Returns:
//   - *Skeleton: the skeleton
//   - error: an error if the hierarchy is empty, out of order or has duplicate names
func NewSkeleton(joints []Joint) (*Skeleton, error) {
	if len(joints) == 0 {
		return nil, errEmptySkeleton
	}

	s := &Skeleton{
		joints:      make([]Joint, len(joints)),
		nameToIndex: make(map[string]int32, len(joints)),
	}
	copy(s.joints, joints)

	world := make([]mgl32.Mat4, len(joints))
	for i := range s.joints {
		j := &s.joints[i]
		if j.ParentIndex >= int32(i) || j.ParentIndex < -1 {
			return nil, fmt.Errorf("joint %d (%q) has parent %d: %w", i, j.Name, j.ParentIndex, errJointOrder)
		}
		if j.Name != "" {
			if _, exists := s.nameToIndex[j.Name]; exists {
				return nil, fmt.Errorf("joint %q: %w", j.Name, errDuplicateName)
			}
			s.nameToIndex[j.Name] = int32(i)
		}

		local := j.LocalTransform.Matrix()
		if j.ParentIndex < 0 {
			world[i] = local
		} else {
			world[i] = world[j.ParentIndex].Mul4(local)
		}

		if j.InverseBindMatrix == (mgl32.Mat4{}) {
			j.InverseBindMatrix = world[i].Inv()
		}
	}

	return s, nil
}

// JointCount returns the number of joints in the skeleton.
//
// Returns:
//   - int: the joint count
func (s *Skeleton) JointCount() int {
	return len(s.joints)
}

// Joint returns the joint at the given index.
//
// Parameters:
//   - index: the joint index
//
// Returns:
//   - Joint: the joint
func (s *Skeleton) Joint(index int) Joint {
	return s.joints[index]
}

// FindJointIndex returns the index of a joint by name, or -1 if not found.
//
// Parameters:
//   - name: the joint name to search for
//
// Returns:
//   - int32: the joint index, or -1 if not found
func (s *Skeleton) FindJointIndex(name string) int32 {
	if idx, ok := s.nameToIndex[name]; ok {
		return idx
	}
	return -1
}

// BindPose builds a new Pose holding the skeleton's bind transforms.
//
// Returns:
//   - *Pose: a pose with local and global transforms at bind
func (s *Skeleton) BindPose() *Pose {
	p := &Pose{
		skeleton: s,
		local:    make([]Transform, len(s.joints)),
		global:   make([]mgl32.Mat4, len(s.joints)),
	}
	for i := range s.joints {
		p.local[i] = s.joints[i].LocalTransform
	}
	p.CalculateGlobalPose()
	return p
}
