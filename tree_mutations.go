// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

import "log/slog"

// TreeMutations is the engine described in spec §4.4-§4.6: it ingests a
// batched child-list mutation, maintains the floating set of moved nodes and
// the two sibling graphs, runs promise resolution and fixedness propagation,
// and supports synchronize/clear/revert.
type TreeMutations struct {
	floating map[Handle]*MovedNodeRecord

	origPrev *SiblingIndex
	origNext *SiblingIndex
	mutPrev  *SiblingIndex
	mutNext  *SiblingIndex

	promises []*SiblingPromise

	log             *slog.Logger
	assertionsFatal bool
}

func newTreeMutations(log *slog.Logger, assertionsFatal bool) *TreeMutations {
	return &TreeMutations{
		floating:        make(map[Handle]*MovedNodeRecord),
		origPrev:        newSiblingIndex(Original, Prev),
		origNext:        newSiblingIndex(Original, Next),
		mutPrev:         newSiblingIndex(Mutated, Prev),
		mutNext:         newSiblingIndex(Mutated, Next),
		log:             log,
		assertionsFatal: assertionsFatal,
	}
}

func (t *TreeMutations) originalIndex(side Side) *SiblingIndex {
	if side == Prev {
		return t.origPrev
	}
	return t.origNext
}

func (t *TreeMutations) mutatedIndex(side Side) *SiblingIndex {
	if side == Prev {
		return t.mutPrev
	}
	return t.mutNext
}

func (t *TreeMutations) assert(invariant string, cond bool, detail string) {
	if cond {
		return
	}
	v := newAssertionViolation(invariant, detail)
	if t.assertionsFatal {
		panic(v)
	}
	t.log.Error("assertion violation", "invariant", invariant, "detail", detail)
}

// clear drops all floating-set/index/promise state.
func (t *TreeMutations) clear() {
	t.floating = make(map[Handle]*MovedNodeRecord)
	t.origPrev.clear()
	t.origNext.clear()
	t.mutPrev.clear()
	t.mutNext.clear()
	t.promises = nil
}

// storageSize returns the number of floating records, per §4.7 storage_size.
func (t *TreeMutations) storageSize() int {
	return len(t.floating)
}

// mutation ingests one batched child-list notification, per spec §4.4.
func (t *TreeMutations) mutation(parent Handle, removed, added []Handle, prev, next Handle) {
	seq := t.buildWindow(removed, prev, next)

	// Step 1: resolve promises whose pointer falls inside the revealed window.
	t.resolveWindowPromises(seq)

	// Step 2: ingest removals.
	newlyFloated := make([]*MovedNodeRecord, 0, len(removed))
	revertCandidates := make([]*MovedNodeRecord, 0, len(removed)+2)
	for _, n := range removed {
		rec, existed := t.floating[n]
		if !existed {
			rec = &MovedNodeRecord{Node: n, Original: &PositionTriple{Parent: parent}}
			t.floating[n] = rec
			newlyFloated = append(newlyFloated, rec)
			continue
		}
		t.mutPrev.remove(rec)
		t.mutNext.remove(rec)
		if rec.Original == nil {
			// A pure add being immediately removed again: the operations cancel.
			t.discardRecordPromises(rec)
			delete(t.floating, n)
			continue
		}
		rec.Mutated = nil
		if rec.Original.Parent == parent {
			revertCandidates = append(revertCandidates, rec)
		}
	}

	// Step 3: fill original siblings for newly-floated nodes.
	for _, rec := range newlyFloated {
		removedIdx := indexOf(removed, rec.Node)
		for _, side := range [2]Side{Prev, Next} {
			t.fillOriginalSide(rec, side, removedIdx, removed, seq)
		}
	}

	// Step 4: ingest additions and update window endpoints.
	t.updateWindowEndpoints(parent, added, prev, next)
	for _, h := range [2]Handle{prev, next} {
		if rec, ok := t.floating[h]; ok && h != nil && rec.Original != nil && rec.Original.Parent == parent {
			revertCandidates = append(revertCandidates, rec)
		}
	}
	for _, n := range added {
		rec, existed := t.floating[n]
		if !existed {
			rec = &MovedNodeRecord{Node: n}
			t.floating[n] = rec
		} else {
			t.mutPrev.remove(rec)
			t.mutNext.remove(rec)
			if rec.Original != nil && rec.Original.Parent == parent {
				revertCandidates = append(revertCandidates, rec)
			}
		}
		rec.Mutated = &PositionTriple{Parent: parent}
	}
	t.linkAddedWindow(parent, added, prev, next)

	// Step 5: fixedness propagation.
	queue := make([]*MovedNodeRecord, 0, len(revertCandidates))
	queue = append(queue, revertCandidates...)
	for _, rec := range revertCandidates {
		rec.resetTried()
	}
	t.propagate(queue)

	t.assertPostconditions()
}

// buildWindow returns the revealed `prev, removed*, next` slice as
// [Sibling]s, with absent prev/next represented as [EndSibling].
func (t *TreeMutations) buildWindow(removed []Handle, prev, next Handle) []Sibling {
	seq := make([]Sibling, 0, len(removed)+2)
	if prev == nil {
		seq = append(seq, EndSibling)
	} else {
		seq = append(seq, NodeSibling(prev))
	}
	for _, n := range removed {
		seq = append(seq, NodeSibling(n))
	}
	if next == nil {
		seq = append(seq, EndSibling)
	} else {
		seq = append(seq, NodeSibling(next))
	}
	return seq
}

// resolveWindowPromises implements spec §4.4 Step 1: any record within the
// revealed window that has a pending promise on its mutated prev/next slot is
// resolved by scanning outward through the window for the first fixed
// (non-floating) node or parent boundary, joint-resolving with any promise
// encountered coming from the opposite direction.
func (t *TreeMutations) resolveWindowPromises(seq []Sibling) {
	for i, s := range seq {
		h, ok := s.IsNode()
		if !ok {
			continue
		}
		rec, floating := t.floating[h]
		if !floating || rec.Mutated == nil {
			continue
		}
		if p, ok2 := rec.Mutated.Prev.Promise(); ok2 {
			t.resolveAlongWindow(p, seq, i-1, -1)
		}
		if q, ok2 := rec.Mutated.Next.Promise(); ok2 {
			t.resolveAlongWindow(q, seq, i+1, 1)
		}
	}
}

func (t *TreeMutations) resolveAlongWindow(p *SiblingPromise, seq []Sibling, start, step int) {
	for i := start; i >= 0 && i < len(seq); i += step {
		s := seq[i]
		if s.IsEnd() {
			p.resolve(t, EndSibling)
			p.discard(t)
			return
		}
		h, _ := s.IsNode()
		rec, floating := t.floating[h]
		if !floating {
			p.resolve(t, NodeSibling(h))
			p.discard(t)
			return
		}
		if rec.Mutated != nil {
			oppSide := Prev
			if step < 0 {
				oppSide = Next
			}
			if otherP, ok := rec.Mutated.sibling(oppSide).Promise(); ok && otherP != p {
				p.resolve(t, NodeSibling(otherP.Origin.Node))
				otherP.resolve(t, NodeSibling(p.Origin.Node))
				p.discard(t)
				otherP.discard(t)
				return
			}
		}
	}
	// Ran out of revealed window without a resolution; p stays pending,
	// still attached to whichever record originally held it.
}

// fillOriginalSide attempts, in order, the three strategies of spec §4.4
// Step 3 to determine rec's original sibling on side.
func (t *TreeMutations) fillOriginalSide(rec *MovedNodeRecord, side Side, removedIdx int, removed []Handle, seq []Sibling) {
	if !rec.Original.sibling(side).IsUnknown() {
		return
	}
	opp := side.opposite()

	// Rule 1: already indexed from the opposite-direction index.
	if other, ok := t.originalIndex(opp).get(rec.Node); ok {
		t.originalIndex(side).update(rec, NodeSibling(other.Node), rec.Original.Parent)
		return
	}

	neighbor := windowNeighbor(seq, removedIdx, side)

	// Rule 2: the window neighbor is itself a newly-floated fixed node.
	if h, ok := neighbor.IsNode(); ok {
		if nrec, ok2 := t.floating[h]; ok2 && nrec.Original != nil && nrec.Original.sibling(opp).IsUnknown() && indexOf(removed, h) >= 0 {
			t.originalIndex(side).update(rec, NodeSibling(h), rec.Original.Parent)
			t.originalIndex(opp).update(nrec, NodeSibling(rec.Node), nrec.Original.Parent)
			return
		}
	}

	// Rule 3: launch a promise rooted at rec, hinted by the window neighbor.
	p := &SiblingPromise{Origin: rec, Direction: side}
	t.promises = append(t.promises, p)
	switch {
	case neighbor.IsEnd():
		p.resolve(t, EndSibling)
	default:
		h, _ := neighbor.IsNode()
		if nrec, ok := t.floating[h]; ok {
			p.resume(t, nrec)
		} else {
			// Neighbor has no record: it is fixed by definition.
			p.resolve(t, NodeSibling(h))
		}
	}
}

// windowNeighbor returns the window element adjacent to removed[removedIdx]
// on side, as revealed by this single notification.
func windowNeighbor(seq []Sibling, removedIdx int, side Side) Sibling {
	pos := removedIdx + 1 // seq[0] is the prev/End sentinel
	if side == Prev {
		return seq[pos-1]
	}
	return seq[pos+1]
}

func indexOf(hs []Handle, h Handle) int {
	for i, x := range hs {
		if x == h {
			return i
		}
	}
	return -1
}

// updateWindowEndpoints updates the mutated-side slots of the prev/next
// boundary records (if floating) to reference the new sequence endpoints,
// per spec §4.4 Step 4. It runs after the removals (Steps 2-3) have been
// ingested and before the added nodes are processed.
func (t *TreeMutations) updateWindowEndpoints(parent Handle, added []Handle, prev, next Handle) {
	firstAdded, haveFirst := firstOf(added)
	lastAdded, haveLast := lastOf(added)

	if prev != nil {
		if prec, ok := t.floating[prev]; ok {
			newNext := NodeSibling(next)
			if next == nil {
				newNext = EndSibling
			}
			if haveFirst {
				newNext = NodeSibling(firstAdded)
			}
			t.mutNext.update(prec, newNext, parent)
		}
	}
	if next != nil {
		if nrec, ok := t.floating[next]; ok {
			newPrev := NodeSibling(prev)
			if prev == nil {
				newPrev = EndSibling
			}
			if haveLast {
				newPrev = NodeSibling(lastAdded)
			}
			t.mutPrev.update(nrec, newPrev, parent)
		}
	}
}

func firstOf(hs []Handle) (Handle, bool) {
	if len(hs) == 0 {
		return nil, false
	}
	return hs[0], true
}

func lastOf(hs []Handle) (Handle, bool) {
	if len(hs) == 0 {
		return nil, false
	}
	return hs[len(hs)-1], true
}

// linkAddedWindow sets each added record's mutated triple to its position in
// the new sequence, per spec §4.4 Step 4.
func (t *TreeMutations) linkAddedWindow(parent Handle, added []Handle, prev, next Handle) {
	for i, n := range added {
		rec := t.floating[n]

		var prevSib Sibling
		if i == 0 {
			if prev == nil {
				prevSib = EndSibling
			} else {
				prevSib = NodeSibling(prev)
			}
		} else {
			prevSib = NodeSibling(added[i-1])
		}

		var nextSib Sibling
		if i == len(added)-1 {
			if next == nil {
				nextSib = EndSibling
			} else {
				nextSib = NodeSibling(next)
			}
		} else {
			nextSib = NodeSibling(added[i+1])
		}

		t.mutPrev.update(rec, prevSib, parent)
		t.mutNext.update(rec, nextSib, parent)
	}
}

// propagate implements spec §4.4 Step 5: checks each candidate for reversion
// to its original position, and on success, propagates the check outward to
// neighbors whose original siblings now match the newly fixed node.
func (t *TreeMutations) propagate(queue []*MovedNodeRecord) {
	for len(queue) > 0 {
		rec := queue[0]
		queue = queue[1:]
		if _, stillFloating := t.floating[rec.Node]; !stillFloating {
			continue
		}
		fixedSides := t.checkReverted(rec)
		t.log.Debug("checked reversion",
			LoggerEventKey, "propagate",
			LoggerHandleKey, rec.Node,
			"prevFixed", fixedSides[Prev],
			"nextFixed", fixedSides[Next],
		)
		if fixedSides[Prev] && fixedSides[Next] {
			t.fix(rec, &queue)
		}
	}
}

// checkReverted reports, per side, whether rec's neighbor in the original
// graph -- skipping over nodes still floating from a different parent -- is
// now a fixed node matching rec.Original[side].
func (t *TreeMutations) checkReverted(rec *MovedNodeRecord) [2]bool {
	var result [2]bool
	for _, side := range [2]Side{Prev, Next} {
		if rec.tried(side) {
			result[side] = false
			continue
		}
		want := rec.Original.sibling(side)
		got := t.effectiveMutatedSibling(rec, side)
		if siblingEqual(want, got) {
			result[side] = true
		} else {
			rec.markTried(side)
		}
	}
	return result
}

// effectiveMutatedSibling returns rec's current mutated sibling on side,
// skipping over floating nodes that originated in a different parent (they
// are transparent to traversal per spec §4.4 tie-break policy).
func (t *TreeMutations) effectiveMutatedSibling(rec *MovedNodeRecord, side Side) Sibling {
	if rec.Mutated == nil {
		return UnknownSibling
	}
	cur := rec.Mutated.sibling(side)
	for {
		h, ok := cur.IsNode()
		if !ok {
			return cur
		}
		nrec, floating := t.floating[h]
		if !floating {
			return cur
		}
		if nrec.Original == nil || nrec.Original.Parent != rec.Original.Parent {
			if nrec.Mutated == nil {
				return UnknownSibling
			}
			cur = nrec.Mutated.sibling(side)
			continue
		}
		return cur
	}
}

// fix removes rec from the floating set and both SiblingIndexes, discards
// its attached promises, and enqueues neighbors whose original siblings
// match rec for re-checking (fixedness propagation).
func (t *TreeMutations) fix(rec *MovedNodeRecord, queue *[]*MovedNodeRecord) {
	t.log.Debug("fixed", LoggerHandleKey, rec.Node)

	t.origPrev.remove(rec)
	t.origNext.remove(rec)
	t.mutPrev.remove(rec)
	t.mutNext.remove(rec)
	t.discardRecordPromises(rec)
	delete(t.floating, rec.Node)

	for _, side := range [2]Side{Prev, Next} {
		if h, ok := rec.Original.sibling(side).IsNode(); ok {
			if nrec, ok2 := t.floating[h]; ok2 {
				nrec.resetTried()
				*queue = append(*queue, nrec)
			}
		}
		if other, ok := t.originalIndex(side.opposite()).get(rec.Node); ok {
			other.resetTried()
			*queue = append(*queue, other)
		}
	}
}

func (t *TreeMutations) discardRecordPromises(rec *MovedNodeRecord) {
	for _, p := range t.promises {
		if p.Origin == rec && !p.resolved {
			p.discard(t)
		}
	}
}

func (t *TreeMutations) assertPostconditions() {
	for h, rec := range t.floating {
		t.assert("M1", rec.Original != nil || rec.Mutated != nil, "record with both sides nil remained floating")
		t.assert("F1", rec.isFloating(), "quiescent record whose position equals its original")
		_ = h
	}
}

// synchronize implements spec §4.5: walks the live tree to resolve every
// sibling slot that is still unknown or pending a promise, which in turn
// resolves any [SiblingPromise] parked there, then re-checks reversion for
// every record whose promises resolved.
func (t *TreeMutations) synchronize(tree TreeAccessor) int {
	resolvedOrigins := make([]*MovedNodeRecord, 0)

	for _, rec := range t.floating {
		if rec.Mutated == nil {
			continue
		}
		for _, side := range [2]Side{Prev, Next} {
			cur := rec.Mutated.sibling(side)
			p, pending := cur.Promise()
			if !cur.IsUnknown() && !pending {
				continue
			}
			live := t.liveSibling(tree, rec.Node, side)
			if pending {
				p.resolve(t, live)
				p.discard(t)
				resolvedOrigins = append(resolvedOrigins, p.Origin)
			}
			if side == Prev {
				t.mutPrev.update(rec, live, rec.Mutated.Parent)
			} else {
				t.mutNext.update(rec, live, rec.Mutated.Parent)
			}
		}
	}

	live := t.promises[:0]
	for _, p := range t.promises {
		if !p.resolved {
			live = append(live, p)
		}
	}
	t.promises = live

	queue := make([]*MovedNodeRecord, 0, len(resolvedOrigins))
	for _, rec := range resolvedOrigins {
		rec.resetTried()
		queue = append(queue, rec)
	}
	t.propagate(queue)
	t.assertPostconditions()

	return len(t.floating)
}

// liveSibling reads node's live sibling in side direction from tree,
// stepping past still-floating neighbors to find the first fixed node or
// the parent boundary. It mirrors [SiblingPromise.resume]'s walk, but is
// grounded on the live tree rather than the mutated-sibling graph, which is
// exactly the extra information [TreeMutations.synchronize] has to offer.
func (t *TreeMutations) liveSibling(tree TreeAccessor, node Handle, side Side) Sibling {
	for {
		prev, next := tree.SiblingsOf(node)
		neighbor := next
		if side == Prev {
			neighbor = prev
		}
		if neighbor == nil {
			return EndSibling
		}
		if rec, floating := t.floating[neighbor]; floating && rec.isFloating() {
			node = neighbor
			continue
		}
		return NodeSibling(neighbor)
	}
}

// moveGroup is one maximal adjacent run of nodes sharing the same original
// parent, linked through each other as original siblings, per spec §4.6.
type moveGroup struct {
	Nodes  []Handle
	Parent Handle
	Prev   Sibling
	Next   Sibling
}

// moveGroups partitions the floating set into the maximal adjacent runs
// described in spec §4.6.
func (t *TreeMutations) moveGroups() []moveGroup {
	visited := make(map[Handle]bool, len(t.floating))
	var groups []moveGroup

	for h, rec := range t.floating {
		if visited[h] || rec.Original == nil {
			continue
		}
		// Walk to the head of the run (no original-prev floating neighbor
		// sharing this parent).
		head := rec
		for {
			ph, ok := head.Original.Prev.IsNode()
			if !ok {
				break
			}
			prec, ok2 := t.floating[ph]
			if !ok2 || prec.Original == nil || prec.Original.Parent != rec.Original.Parent {
				break
			}
			head = prec
		}

		var nodes []Handle
		cur := head
		for {
			if visited[cur.Node] {
				break
			}
			visited[cur.Node] = true
			nodes = append(nodes, cur.Node)
			nh, ok := cur.Original.Next.IsNode()
			if !ok {
				break
			}
			nrec, ok2 := t.floating[nh]
			if !ok2 || nrec.Original == nil || nrec.Original.Parent != cur.Original.Parent {
				break
			}
			cur = nrec
		}

		groups = append(groups, moveGroup{
			Nodes:  nodes,
			Parent: head.Original.Parent,
			Prev:   head.Original.Prev,
			Next:   cur.Original.Next,
		})
	}
	return groups
}

// revert applies every move group back onto tree, per spec §4.6: first
// detach every floating node, then insert each group using whichever side is
// known, falling back to append/prepend, skipping (with a diagnostic) groups
// where neither side is known.
func (t *TreeMutations) revert(tree TreeAccessor) []*RevertDiagnostic {
	groups := t.moveGroups()

	for _, g := range groups {
		for _, n := range g.Nodes {
			tree.Remove(n)
		}
	}

	var diagnostics []*RevertDiagnostic
	for _, g := range groups {
		if !insertGroup(tree, g) {
			diagnostics = append(diagnostics, &RevertDiagnostic{Nodes: g.Nodes, Parent: g.Parent})
			t.log.Error("insufficient information to revert group", LoggerEventKey, "revert-skip", LoggerParentKey, g.Parent)
			continue
		}
		t.log.Debug("reverted group", LoggerEventKey, "revert-group", LoggerParentKey, g.Parent)
	}

	t.clear()
	return diagnostics
}

func insertGroup(tree TreeAccessor, g moveGroup) bool {
	if h, ok := g.Next.IsNode(); ok {
		for _, n := range g.Nodes {
			tree.InsertBefore(g.Parent, n, h)
		}
		return true
	}
	if g.Next.IsEnd() {
		for _, n := range g.Nodes {
			tree.Append(g.Parent, n)
		}
		return true
	}
	if h, ok := g.Prev.IsNode(); ok {
		ref := h
		for _, n := range g.Nodes {
			// insert each node right after ref, advancing ref each time to
			// preserve order.
			insertAfter(tree, g.Parent, n, ref)
			ref = n
		}
		return true
	}
	if g.Prev.IsEnd() {
		for i := len(g.Nodes) - 1; i >= 0; i-- {
			tree.Prepend(g.Parent, g.Nodes[i])
		}
		return true
	}
	return false
}

func insertAfter(tree TreeAccessor, parent, node, ref Handle) {
	_, next := tree.SiblingsOf(ref)
	if next == nil {
		tree.Append(parent, node)
		return
	}
	tree.InsertBefore(parent, node, next)
}
