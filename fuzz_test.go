// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func driveInsertAfter(ft *fakeTree, md *MutationDiff, parent, node, ref *fakeNode) {
	if node.parent != nil {
		driveRemove(ft, md, node)
	}
	_, next := ft.SiblingsOf(ref)
	ft.InsertBefore(parent, node, next)
	prev, nxt := ft.SiblingsOf(node)
	md.Children(parent, nil, []Handle{node}, prev, nxt)
}

// TestFuzzRevertSoundness exercises property P1 (spec §8): after any
// sequence of tracked child-list moves within a single parent, Revert
// restores the tree to its exact state at tracking start, with no
// diagnostics.
func TestFuzzRevertSoundness(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(20, 60)

	for trial := 0; trial < 50; trial++ {
		ft := newFakeTree()
		r := newFakeNode("R")
		nodes := make([]*fakeNode, 5)
		for i := range nodes {
			nodes[i] = newFakeNode(string(rune('A' + i)))
			ft.Append(r, nodes[i])
		}
		original := childHandles(r)

		md := New(ft)

		var ops []uint8
		f.Fuzz(&ops)

		for _, op := range ops {
			n := nodes[int(op)%len(nodes)]
			if op%2 == 0 {
				driveAppend(ft, md, r, n)
			} else {
				drivePrepend(ft, md, r, n)
			}
		}

		diags := md.Revert()
		require.Empty(t, diags, "trial %d", trial)
		assert.Equal(t, original, childHandles(r), "trial %d", trial)
	}
}

// TestFuzzMinimalityAfterCancelingMoves exercises property P2 (spec §8): a
// node moved away and then moved directly back to its exact original
// position leaves no trace in the floating set, regardless of which node
// was picked.
func TestFuzzMinimalityAfterCancelingMoves(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for trial := 0; trial < 50; trial++ {
		ft := newFakeTree()
		r := newFakeNode("R")
		nodes := make([]*fakeNode, 5)
		for i := range nodes {
			nodes[i] = newFakeNode(string(rune('A' + i)))
			ft.Append(r, nodes[i])
		}
		md := New(ft)

		var pick uint8
		f.Fuzz(&pick)
		idx := int(pick) % len(nodes)
		n := nodes[idx]
		before := childHandles(r)

		driveRemove(ft, md, n)
		if idx == 0 {
			drivePrepend(ft, md, r, n)
		} else {
			driveInsertAfter(ft, md, r, n, nodes[idx-1])
		}

		require.Equal(t, before, childHandles(r), "trial %d", trial)
		assert.False(t, md.Mutated(r), "trial %d: a no-op round trip must leave nothing floating", trial)
		assert.Equal(t, 0, md.StorageSize(), "trial %d", trial)
	}
}

// TestFuzzDiffNeverReportsUnchangedAttributes exercises property P2's
// attribute-side counterpart: an attribute mutation whose reported old value
// equals the live current value never produces a diff entry.
func TestFuzzDiffNeverReportsUnchangedAttributes(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for trial := 0; trial < 50; trial++ {
		ft := newFakeTree()
		a := newFakeNode("a")
		var val string
		f.Fuzz(&val)
		a.attrs["class"] = val
		md := New(ft)

		md.Attribute(a, "class", "", strp(val))

		out, err := md.Diff(DiffAll)
		require.NoError(t, err)
		assert.Empty(t, out, "trial %d", trial)
	}
}
