// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

import (
	"iter"

	"github.com/johanneswilm/mutationdiff/internal/iterutil"
)

// DiffFilter selects which sides and which kinds of change [MutationDiff.Seq]
// (and [MutationDiff.Diff]) materialize, per spec §4.7. Members combine with
// bitwise OR.
type DiffFilter uint16

const (
	DiffOriginal  DiffFilter = 1 << iota // include each node's original side
	DiffMutated                         // include each node's mutated (current) side
	DiffData                            // include character-data changes
	DiffAttribute                       // include native attribute changes
	DiffCustom                          // include custom property changes
	DiffChildren                        // include child-position changes

	DiffProperty = DiffData | DiffAttribute | DiffCustom
	DiffAll      = DiffOriginal | DiffMutated | DiffProperty | DiffChildren
)

func (f DiffFilter) valid() bool {
	const known = DiffOriginal | DiffMutated | DiffData | DiffAttribute | DiffCustom | DiffChildren
	return f&^known == 0
}

func (f DiffFilter) has(bit DiffFilter) bool {
	return f&bit != 0
}

// ValuePair is the `{original, mutated}` pair described in spec §6 for a
// single changed property.
type ValuePair struct {
	Original any
	Mutated  any
	// HasOriginal/HasMutated distinguish a nil value from an absent side,
	// since the filter may have suppressed one side.
	HasOriginal bool
	HasMutated  bool
}

// ChildrenDiff is the `{original, mutated}` position pair for a node's
// children-position change, per spec §6.
type ChildrenDiff struct {
	Original *PositionTriple
	Mutated  *PositionTriple
}

// NodeDiff is the per-node entry of the map [MutationDiff.Diff] returns,
// per spec §6: `{data?, attribute?, custom?, children?}`.
type NodeDiff struct {
	Data      *ValuePair
	Attribute map[string]ValuePair
	Custom    map[any]ValuePair
	Children  *ChildrenDiff
}

func (n *NodeDiff) empty() bool {
	return n.Data == nil && len(n.Attribute) == 0 && len(n.Custom) == 0 && n.Children == nil
}

// Seq returns a lazy range iterator over every node with a nonempty
// [NodeDiff] under filter. Unlike [MutationDiff.Diff], nothing is
// materialized until the caller ranges over it, and a caller that stops
// early (returning false from yield) skips building the rest, mirroring the
// teacher's Iter.All/Iter.Routes pattern built on iter.Seq2.
func (d *MutationDiff) Seq(filter DiffFilter) iter.Seq2[Handle, NodeDiff] {
	return func(yield func(Handle, NodeDiff) bool) {
		if !filter.valid() {
			return
		}
		seen := make(map[Handle]bool)

		if filter.has(DiffProperty) {
			for h := range d.props.nodes() {
				if seen[h] {
					continue
				}
				seen[h] = true
				nd := d.nodeDiff(h, filter)
				if !nd.empty() {
					if !yield(h, nd) {
						return
					}
				}
			}
		}

		if filter.has(DiffChildren) {
			for h := range d.tree.floating {
				if seen[h] {
					continue
				}
				seen[h] = true
				nd := d.nodeDiff(h, filter)
				if !nd.empty() {
					if !yield(h, nd) {
						return
					}
				}
			}
		}
	}
}

// handles returns, in no particular order, every [Handle] [Seq] would visit.
// Exposed for tests that want the node set without caring about diff detail.
func (d *MutationDiff) handles(filter DiffFilter) iter.Seq[Handle] {
	return iterutil.Left(d.Seq(filter))
}
