package ragdoll

// RagdollBuilderOption is a functional option for configuring a Ragdoll via NewRagdoll.
type RagdollBuilderOption func(*ragdoll)

// WithBody is an option builder that binds a rigid body to the joint its name refers to.
// Names may carry the exporter decoration ("OBArmature_<joint>_hitbox"); bodies whose name
// matches no joint are ignored.
//
// Parameters:
//   - name: the rigid body name
//   - body: the rigid body
//
// Returns:
//   - RagdollBuilderOption: a function that applies the body option to a ragdoll
func WithBody(name string, body RigidBody) RagdollBuilderOption {
	return func(r *ragdoll) {
		r.pendingBodies[name] = body
	}
}

// WithBodies is an option builder that binds several named rigid bodies at once.
//
// Parameters:
//   - bodies: rigid bodies keyed by name
//
// Returns:
//   - RagdollBuilderOption: a function that applies the bodies option to a ragdoll
func WithBodies(bodies map[string]RigidBody) RagdollBuilderOption {
	return func(r *ragdoll) {
		for name, body := range bodies {
			r.pendingBodies[name] = body
		}
	}
}
