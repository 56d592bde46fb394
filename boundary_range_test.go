// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundaryRangeExtendUnionsAcrossSiblings(t *testing.T) {
	ft := newFakeTree()
	_, a, _, c := buildRABC(ft)

	left := SelectNode(a)
	right := SelectNode(c)

	out, err := left.Extend(ft, right)
	require.NoError(t, err)
	assert.Equal(t, Boundary{Node: a, At: Before}, out.Start)
	assert.Equal(t, Boundary{Node: c, At: After}, out.End)

	// Order shouldn't matter.
	out2, err := right.Extend(ft, left)
	require.NoError(t, err)
	assert.True(t, out.IsEqual(out2))
}

func TestBoundaryRangeExtendHonorsContainment(t *testing.T) {
	ft := newFakeTree()
	r, a, _, _ := buildRABC(ft)

	outer := SelectNode(r)
	inner := SelectNode(a)

	out, err := outer.Extend(ft, inner)
	require.NoError(t, err)
	assert.True(t, out.IsEqual(outer))
}

func TestBoundaryRangeExtendRejectsDisconnectedTrees(t *testing.T) {
	ft := newFakeTree()
	r1 := newFakeNode("r1")
	a := newFakeNode("a")
	ft.Append(r1, a)

	r2 := newFakeNode("r2")
	x := newFakeNode("x")
	ft.Append(r2, x)

	_, err := SelectNode(a).Extend(ft, SelectNode(x))
	assert.ErrorIs(t, err, ErrDisconnectedRange)
}

func TestBoundaryRangeSetStartSetEnd(t *testing.T) {
	ft := newFakeTree()
	_, a, b, _ := buildRABC(ft)

	rng := SelectNode(a).SetEnd(b, false)
	assert.Equal(t, Boundary{Node: a, At: Before}, rng.Start)
	assert.Equal(t, Boundary{Node: b, At: After}, rng.End)

	rng = rng.SetStart(b, true)
	assert.Equal(t, Boundary{Node: b, At: After}, rng.Start)
	assert.True(t, rng.CloneRange().IsEqual(rng))
}
