// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

// MovedNodeRecord carries a node's original and mutated position triples, per
// spec §3. Original is nil when the node did not exist in tracked scope at
// tracking start; Mutated is nil when the node is presently removed. The two
// are never both nil except transiently during [TreeMutations.mutation].
type MovedNodeRecord struct {
	Node     Handle
	Original *PositionTriple
	Mutated  *PositionTriple

	// triedSide tracks, per side, whether fixedness propagation already
	// attempted that side during the current mutation batch, per spec §4.4
	// Step 5 ("a per-candidate bitset tracks which sides have already been
	// tried").
	triedSide [2]bool
}

func (r *MovedNodeRecord) tried(side Side) bool {
	return r.triedSide[side]
}

func (r *MovedNodeRecord) markTried(side Side) {
	r.triedSide[side] = true
}

func (r *MovedNodeRecord) resetTried() {
	r.triedSide[Prev] = false
	r.triedSide[Next] = false
}

// isFloating reports whether the record still differs from its original
// position, i.e. still belongs in the floating set (invariant F1).
func (r *MovedNodeRecord) isFloating() bool {
	if r.Original == nil || r.Mutated == nil {
		return true
	}
	return !positionEqual(r.Original, r.Mutated)
}

func positionEqual(a, b *PositionTriple) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Parent == b.Parent && siblingEqual(a.Prev, b.Prev) && siblingEqual(a.Next, b.Next)
}

func siblingEqual(a, b Sibling) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case SiblingNode:
		return a.node == b.node
	case SiblingPending:
		return a.promise == b.promise
	default:
		return true
	}
}
