// Package blend_tree evaluates an animation blend graph once per frame.
//
// A BlendTree owns every node in a bounded arena. Nodes refer to each other only through NodeID
// handles, and the tree is evaluated by a depth-first post-order traversal from its Output node:
// a node computes its pose only after every input wired into it has computed its own. The graph
// reachable from the Output node must be acyclic; cycles are not detected.
//
// Trees are not safe for concurrent use. Mutate topology between frames, never during Update.
package blend_tree

import (
	"fmt"
	"slices"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/skeleton"
	"github.com/rs/zerolog"
)

// UpdateObserver receives the outcome of every BlendTree.Update.
type UpdateObserver interface {
	// ObserveUpdate is called once per frame after the traversal finished.
	//
	// Parameters:
	//   - ok: whether the traversal succeeded
	//   - needsPhysics: whether any active ragdoll node requested a physics step
	//   - elapsed: wall time spent in the traversal
	ObserveUpdate(ok, needsPhysics bool, elapsed time.Duration)
}

// blendTree is the implementation of the BlendTree interface.
type blendTree struct {
	logger   zerolog.Logger
	observer UpdateObserver
	maxNodes int

	bindPose *skeleton.Pose
	nodes    []BlendNode
	index    map[NodeID]BlendNode
	nextID   NodeID
	root     *OutputNode
}

// BlendTree defines the public interface of a blend graph.
//
// The tree always starts with one Output node (RootNodeID) as the traversal root. The editor and the
// animation layer mutate its topology through AddNode, RemoveAndFreeNode, the Connect helpers and
// per-node SetInput, and drive it once per frame through Update.
type BlendTree interface {
	// AddNode constructs a node of the given kind and appends it to the arena.
	// Panics if nodeType is not a constructible kind.
	//
	// Parameters:
	//   - nodeType: the kind of node to create
	//
	// Returns:
	//   - NodeID: the new node's handle, or InvalidNodeID if the tree is full
	AddNode(nodeType NodeType) NodeID

	// RemoveAndFreeNode erases a node from the arena and detaches it.
	// Every input slot of the remaining nodes that referenced it is cleared.
	//
	// Parameters:
	//   - node: the node to remove
	//
	// Returns:
	//   - bool: false if the node does not belong to this tree
	RemoveAndFreeNode(node BlendNode) bool

	// Node resolves a handle.
	//
	// Parameters:
	//   - id: the node handle
	//
	// Returns:
	//   - BlendNode: the node, or nil if the handle does not resolve
	Node(id NodeID) BlendNode

	// Nodes returns the arena in insertion order. The Output node is first unless it was removed.
	//
	// Returns:
	//   - []BlendNode: a copy of the node list
	Nodes() []BlendNode

	// Len returns the number of nodes in the arena.
	//
	// Returns:
	//   - int: the node count
	Len() int

	// Root returns the Output node the traversal starts from.
	//
	// Returns:
	//   - *OutputNode: the root node
	Root() *OutputNode

	// ConnectToRoot wires a node into the Output node's only slot.
	//
	// Parameters:
	//   - id: the node to connect
	//
	// Returns:
	//   - bool: true if the node was wired
	ConnectToRoot(id NodeID) bool

	// ConnectNode wires one node into a slot of another.
	//
	// Parameters:
	//   - inputID: the node to wire in
	//   - slot: the receiver's input slot
	//   - receiverID: the node receiving the input
	//
	// Returns:
	//   - bool: true if the receiver accepted the input
	ConnectNode(inputID NodeID, slot int, receiverID NodeID) bool

	// ConnectNodes wires up to MaxInputs nodes into consecutive slots of a receiver, starting at slot 0.
	// Stops at the first rejected input.
	//
	// Parameters:
	//   - receiverID: the node receiving the inputs
	//   - inputIDs: the nodes to wire in, in slot order
	//
	// Returns:
	//   - bool: true if every input was accepted
	ConnectNodes(receiverID NodeID, inputIDs ...NodeID) bool

	// Update evaluates the whole graph once from the Output node.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - bool: true if every evaluated node succeeded
	//   - bool: true if an active ragdoll node requires the physics world to step this frame
	Update(deltaTime float32) (bool, bool)

	// OutputPose returns the Output node's pose, i.e. the tree's result for the last frame.
	//
	// Returns:
	//   - *skeleton.Pose: the output pose, owned by the tree
	OutputPose() *skeleton.Pose

	// BindPose returns the shared bind pose the tree was created with.
	//
	// Returns:
	//   - *skeleton.Pose: the bind pose
	BindPose() *skeleton.Pose
}

var _ BlendTree = &blendTree{}

// NewBlendTree creates a tree holding only its Output node.
// The bind pose is shared, never copied or modified, and must outlive the tree.
//
// Parameters:
//   - bindPose: the skeleton's bind pose
//   - options: variadic list of BlendTreeBuilderOption functions to configure the tree
//
// Returns:
//   - BlendTree: the new tree
func NewBlendTree(bindPose *skeleton.Pose, options ...BlendTreeBuilderOption) BlendTree {
	t := &blendTree{
		logger:   defaultLogger(),
		maxNodes: MaxNodes,
		bindPose: bindPose,
		index:    make(map[NodeID]BlendNode),
	}
	for _, opt := range options {
		opt(t)
	}

	t.nodes = make([]BlendNode, 0, min(t.maxNodes, 16))
	t.root = newOutputNode(t, RootNodeID)
	t.insert(t.root)
	t.nextID = RootNodeID + 1

	return t
}

// NodeAs resolves a handle and returns the node as the requested concrete kind.
//
// Parameters:
//   - tree: the tree to look in
//   - id: the node handle
//
// Returns:
//   - T: the node, or the zero value
//   - bool: false if the handle does not resolve or the node is of another kind
func NodeAs[T BlendNode](tree BlendTree, id NodeID) (T, bool) {
	var zero T
	n := tree.Node(id)
	if n == nil {
		return zero, false
	}
	v, ok := n.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

func (t *blendTree) insert(n BlendNode) {
	t.nodes = append(t.nodes, n)
	t.index[n.ID()] = n
}

func (t *blendTree) lookup(id NodeID) BlendNode {
	if id == InvalidNodeID {
		return nil
	}
	return t.index[id]
}

func (t *blendTree) AddNode(nodeType NodeType) NodeID {
	if _, ok := nodeTypeNames[nodeType]; !ok {
		panic(fmt.Sprintf("blend_tree: cannot construct node of unknown type %d", nodeType))
	}
	if len(t.nodes) >= t.maxNodes {
		t.logger.Warn().
			Int("max_nodes", t.maxNodes).
			Stringer("node_type", nodeType).
			Msg("blend tree is full, node not added")
		return InvalidNodeID
	}

	id := t.nextID
	var n BlendNode
	switch nodeType {
	case NodeTypeOutput:
		n = newOutputNode(t, id)
	case NodeTypeClip:
		n = newClipNode(t, id)
	case NodeTypeLinearBlend:
		n = newLinearBlendNode(t, id)
	case NodeTypeLinearBlendSync:
		n = newLinearBlendSyncNode(t, id)
	case NodeTypeTransition:
		n = newTransitionNode(t, id)
	case NodeTypeRagdoll:
		n = newRagdollNode(t, id)
	default:
		panic(fmt.Sprintf("blend_tree: cannot construct node of unknown type %d", nodeType))
	}

	t.nextID++
	t.insert(n)
	t.logger.Debug().
		Uint32("node", uint32(id)).
		Stringer("node_type", nodeType).
		Msg("node added")
	return id
}

func (t *blendTree) RemoveAndFreeNode(node BlendNode) bool {
	if node == nil {
		return false
	}
	i := slices.IndexFunc(t.nodes, func(n BlendNode) bool { return n == node })
	if i < 0 {
		return false
	}

	id := node.ID()
	t.nodes = slices.Delete(t.nodes, i, i+1)
	delete(t.index, id)

	cleared := 0
	for _, n := range t.nodes {
		cleared += n.base().clearReferences(id)
	}
	node.base().detach()

	t.logger.Debug().
		Uint32("node", uint32(id)).
		Stringer("node_type", node.Type()).
		Int("references_cleared", cleared).
		Msg("node removed")
	return true
}

func (t *blendTree) Node(id NodeID) BlendNode {
	return t.lookup(id)
}

func (t *blendTree) Nodes() []BlendNode {
	return slices.Clone(t.nodes)
}

func (t *blendTree) Len() int {
	return len(t.nodes)
}

func (t *blendTree) Root() *OutputNode {
	return t.root
}

func (t *blendTree) ConnectToRoot(id NodeID) bool {
	n := t.lookup(id)
	if n == nil {
		return false
	}
	return t.root.SetInput(0, n)
}

func (t *blendTree) ConnectNode(inputID NodeID, slot int, receiverID NodeID) bool {
	receiver, input := t.lookup(receiverID), t.lookup(inputID)
	if receiver == nil || input == nil {
		return false
	}
	return receiver.SetInput(slot, input)
}

func (t *blendTree) ConnectNodes(receiverID NodeID, inputIDs ...NodeID) bool {
	if len(inputIDs) > MaxInputs {
		return false
	}
	for slot, id := range inputIDs {
		if !t.ConnectNode(id, slot, receiverID) {
			return false
		}
	}
	return true
}

func (t *blendTree) Update(deltaTime float32) (bool, bool) {
	start := time.Now()
	needsPhysics := false
	ok := false

	if t.lookup(RootNodeID) != nil {
		ok = t.root.Update(deltaTime, &needsPhysics)
	}
	if !ok {
		t.logger.Trace().Float32("delta_time", deltaTime).Msg("blend tree update failed")
	}

	if t.observer != nil {
		t.observer.ObserveUpdate(ok, needsPhysics, time.Since(start))
	}
	return ok, needsPhysics
}

func (t *blendTree) OutputPose() *skeleton.Pose {
	return t.root.Pose()
}

func (t *blendTree) BindPose() *skeleton.Pose {
	return t.bindPose
}
