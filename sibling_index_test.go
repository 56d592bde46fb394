// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiblingIndexUpdateAndGet(t *testing.T) {
	idx := newSiblingIndex(Original, Next)
	rec := &MovedNodeRecord{Node: "a", Original: &PositionTriple{Parent: "p"}}

	idx.update(rec, NodeSibling("b"), "p")
	got, ok := idx.get("b")
	require.True(t, ok)
	assert.Same(t, rec, got)
	assert.Equal(t, 1, idx.size())
}

func TestSiblingIndexUpdateLazilyCreatesTriple(t *testing.T) {
	idx := newSiblingIndex(Mutated, Prev)
	rec := &MovedNodeRecord{Node: "a"}

	idx.update(rec, NodeSibling("z"), "parent-hint")
	require.NotNil(t, rec.Mutated)
	assert.Equal(t, Handle("parent-hint"), rec.Mutated.Parent)
}

func TestSiblingIndexNeverIndexesNonNodeSiblings(t *testing.T) {
	idx := newSiblingIndex(Original, Prev)
	rec := &MovedNodeRecord{Node: "a", Original: &PositionTriple{Parent: "p"}}

	idx.update(rec, EndSibling, "p")
	assert.Equal(t, 0, idx.size())

	idx.update(rec, UnknownSibling, "p")
	assert.Equal(t, 0, idx.size())
}

func TestSiblingIndexRemoveOnlyIfStillOwner(t *testing.T) {
	idx := newSiblingIndex(Original, Next)
	recA := &MovedNodeRecord{Node: "a", Original: &PositionTriple{Parent: "p"}}
	recB := &MovedNodeRecord{Node: "b", Original: &PositionTriple{Parent: "p"}}

	idx.update(recA, NodeSibling("x"), "p")
	idx.update(recB, NodeSibling("x"), "p") // recB steals the key
	idx.remove(recA)                        // must not evict recB's entry

	got, ok := idx.get("x")
	require.True(t, ok)
	assert.Same(t, recB, got)
}

func TestSiblingIndexClear(t *testing.T) {
	idx := newSiblingIndex(Original, Prev)
	rec := &MovedNodeRecord{Node: "a", Original: &PositionTriple{Parent: "p"}}
	idx.update(rec, NodeSibling("b"), "p")
	idx.clear()
	assert.Equal(t, 0, idx.size())
}
