package blend_tree

import (
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
)

// LinearBlendSyncNode blends two clip nodes while rescaling their playback speeds so both cycles
// stay phase-aligned at any blend factor (e.g. walk to run).
//
// Only ClipNodes may be wired into it. Speed ratios are derived from the clip durations and cached
// against the pair of clip categories; they are recomputed only when that pair changes.
type LinearBlendSyncNode struct {
	LinearBlendNode

	categories  [2]clip.Category
	ratios      [2]float32
	ratiosValid bool
}

var _ BlendNode = &LinearBlendSyncNode{}

func newLinearBlendSyncNode(tree *blendTree, id NodeID) *LinearBlendSyncNode {
	n := &LinearBlendSyncNode{
		LinearBlendNode: LinearBlendNode{baseNode: newBaseNode(tree, id, NodeTypeLinearBlendSync)},
		ratios:          [2]float32{1, 1},
	}
	n.accepts = acceptsClipNode
	return n
}

func acceptsClipNode(input BlendNode) bool {
	_, ok := input.(*ClipNode)
	return ok
}

func (n *LinearBlendSyncNode) Update(deltaTime float32, needsPhysics *bool) bool {
	if !n.updateInputs(deltaTime, needsPhysics) {
		return false
	}
	return n.ProcessData(deltaTime)
}

// ProcessData refreshes the speed ratios if the clip categories changed, scales both clips'
// playback speeds by the blend factor, then blends their poses.
func (n *LinearBlendSyncNode) ProcessData(deltaTime float32) bool {
	return n.syncBlend()
}

func (n *LinearBlendSyncNode) syncBlend() bool {
	if n.refreshSyncRatios() {
		n.applySyncSpeeds()
	}
	return n.blend()
}

// clipInputs returns the clip nodes of slots 0 and 1 when both are wired and hold a clip.
func (n *LinearBlendSyncNode) clipInputs() (*ClipNode, *ClipNode, bool) {
	c0, ok0 := n.Input(0).(*ClipNode)
	c1, ok1 := n.Input(1).(*ClipNode)
	if !ok0 || !ok1 || c0.Clip() == nil || c1.Clip() == nil {
		return nil, nil, false
	}
	return c0, c1, true
}

// refreshSyncRatios recomputes ratio0 = d0/d1 and ratio1 = d1/d0 when the observed category pair
// differs from the cached one. It reports whether usable ratios are available.
func (n *LinearBlendSyncNode) refreshSyncRatios() bool {
	c0, c1, ok := n.clipInputs()
	if !ok {
		return false
	}

	categories := [2]clip.Category{c0.Clip().Category(), c1.Clip().Category()}
	if n.ratiosValid && categories == n.categories {
		return true
	}

	d0, d1 := c0.Clip().Duration(), c1.Clip().Duration()
	if d0 > 0 && d1 > 0 {
		n.ratios = [2]float32{d0 / d1, d1 / d0}
	} else {
		n.ratios = [2]float32{1, 1}
	}
	n.categories = categories
	n.ratiosValid = true

	if n.tree != nil {
		n.tree.logger.Debug().
			Uint32("node", uint32(n.id)).
			Stringer("category0", categories[0]).
			Stringer("category1", categories[1]).
			Float32("ratio0", n.ratios[0]).
			Float32("ratio1", n.ratios[1]).
			Msg("recomputed sync ratios")
	}
	return true
}

// invalidateSyncRatios forces the next refresh to recompute the ratios.
func (n *LinearBlendSyncNode) invalidateSyncRatios() {
	n.ratiosValid = false
}

// applySyncSpeeds sets speed0 = 1 + (ratio0 - 1) * f and speed1 = ratio1 + (1 - ratio1) * f.
func (n *LinearBlendSyncNode) applySyncSpeeds() {
	c0, c1, ok := n.clipInputs()
	if !ok {
		return
	}
	f := n.blendFactor
	c0.SetPlaybackSpeed(1 + (n.ratios[0]-1)*f)
	c1.SetPlaybackSpeed(n.ratios[1] + (1-n.ratios[1])*f)
}

// SyncRatios returns the cached duration ratios (d0/d1, d1/d0).
func (n *LinearBlendSyncNode) SyncRatios() [2]float32 {
	return n.ratios
}

// SyncCategories returns the clip category pair the cached ratios were computed for.
func (n *LinearBlendSyncNode) SyncCategories() [2]clip.Category {
	return n.categories
}
