// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

// SiblingPromise is a deferred computation representing "the original
// sibling of Origin in Direction, pending discovery of intermediate
// siblings," per spec §3/§4.3. It is not a runtime task: it is a struct
// pointed to from exactly one mutated-sibling slot (Pointer's Mutated
// triple, at PointerSide), allocated from the owning [TreeMutations]'
// promise arena and discarded by [SiblingPromise.discard], [clear], or
// [revert], per DESIGN NOTES §9.
type SiblingPromise struct {
	Origin      *MovedNodeRecord
	Direction   Side
	Pointer     *MovedNodeRecord
	PointerSide Side
	resolved    bool
}

// resume walks from start along p.Direction through the mutated-sibling
// graph, skipping over nodes that are still floating (they are transparent
// to the walk, mirroring the fixedness-propagation traversal's treatment of
// floating neighbors), per spec §4.3:
//   - a concrete fixed node resolves the promise to that node;
//   - the end of the parent resolves the promise to "end";
//   - an unknown slot attaches p to it and suspends;
//   - a pending slot (another promise) is left untouched: promise-vs-promise
//     joins only happen explicitly, during [TreeMutations.mutation] Step 1,
//     never as a side effect of a generic walk (this is never observed in
//     practice per the invariant spec §4.3 documents).
//
// Returns whether resolution completed.
func (p *SiblingPromise) resume(engine *TreeMutations, start *MovedNodeRecord) bool {
	cur := start
	for {
		if cur.Mutated == nil {
			p.attach(cur, p.Direction)
			return false
		}
		sib := cur.Mutated.sibling(p.Direction)
		switch {
		case sib.IsEnd():
			p.resolve(engine, EndSibling)
			return true
		case sib.IsUnknown():
			p.attach(cur, p.Direction)
			return false
		default:
			if h, ok := sib.IsNode(); ok {
				if rec, floating := engine.floating[h]; floating && rec.isFloating() {
					cur = rec
					continue
				}
				p.resolve(engine, NodeSibling(h))
				return true
			}
			// Pending: another promise occupies this slot. Do not join here.
			return false
		}
	}
}

func (p *SiblingPromise) attach(pointer *MovedNodeRecord, side Side) {
	p.Pointer = pointer
	p.PointerSide = side
	if pointer.Mutated == nil {
		pointer.Mutated = &PositionTriple{}
	}
	pointer.Mutated.setSibling(side, PendingSibling(p))
}

// resolve writes sib into origin.Original[direction] and indexes it on the
// original-side [SiblingIndex].
func (p *SiblingPromise) resolve(engine *TreeMutations, sib Sibling) {
	if p.resolved {
		return
	}
	p.resolved = true
	origin := p.Origin
	if origin.Original == nil {
		origin.Original = &PositionTriple{}
	}
	origin.Original.setSibling(p.Direction, sib)
	idx := engine.originalIndex(p.Direction)
	idx.add(origin)

	engine.log.Debug("resolved", LoggerEventKey, "resolve", LoggerHandleKey, origin.Node, LoggerSideKey, p.Direction)
}

// discard detaches p from its current Pointer slot, resetting it to unknown.
func (p *SiblingPromise) discard(engine *TreeMutations) {
	if p.Pointer == nil {
		return
	}
	if cur, ok := p.Pointer.Mutated.sibling(p.PointerSide).Promise(); ok && cur == p {
		p.Pointer.Mutated.setSibling(p.PointerSide, UnknownSibling)
	}
	engine.log.Debug("discarded", LoggerEventKey, "discard", LoggerHandleKey, p.Pointer.Node, LoggerSideKey, p.PointerSide)
	p.Pointer = nil
}
