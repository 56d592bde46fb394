// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

// Scenario 4 (spec §8): attribute toggle-and-restore nets to quiescent.
func TestScenarioAttributeToggleAndRestore(t *testing.T) {
	ft := newFakeTree()
	a := newFakeNode("a")
	a.attrs["class"] = "x"
	md := New(ft)

	ft.AttributeSet(a, "class", "y")
	md.Attribute(a, "class", "", strp("x"))
	assert.True(t, md.Mutated(nil))

	ft.AttributeSet(a, "class", "x")
	md.Attribute(a, "class", "", strp("y"))
	assert.False(t, md.Mutated(nil))

	assert.Equal(t, 0, md.Synchronize())
	assert.Equal(t, 0, md.StorageSize())
}

// Scenario 5 (spec §8): character-data edit then revert.
func TestScenarioCharacterDataEditThenRevert(t *testing.T) {
	ft := newFakeTree()
	text := newFakeNode("t")
	text.data = "hello"
	md := New(ft)

	ft.DataSet(text, "hi")
	md.Data(text, "hello")

	assert.True(t, md.Mutated(nil))
	diags := md.Revert()
	assert.Empty(t, diags)
	assert.Equal(t, "hello", ft.DataGet(text))
	assert.False(t, md.Mutated(nil))
}

func TestRecordDispatchesByKind(t *testing.T) {
	ft := newFakeTree()
	a := newFakeNode("a")
	a.attrs["class"] = "x"
	md := New(ft)

	ft.AttributeSet(a, "class", "y")
	err := md.Record(AttributesRecord{Target: a, Name: "class", OldValue: strp("x")})
	require.NoError(t, err)
	assert.True(t, md.Mutated(nil))
}

func TestRecordRejectsUnknownKind(t *testing.T) {
	md := New(newFakeTree())
	err := md.Record(unknownRecord{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

type unknownRecord struct{}

func (unknownRecord) Kind() Kind { return Kind(99) }

func TestAttributeFilterSkipsUnmatchedNames(t *testing.T) {
	ft := newFakeTree()
	a := newFakeNode("a")
	a.attrs["style"] = "x"
	md := New(ft, WithAttributeFilter(NameMatcher{Name: "class"}))

	ft.AttributeSet(a, "style", "y")
	md.Attribute(a, "style", "", strp("x"))

	assert.False(t, md.Mutated(nil))
	assert.Equal(t, 0, md.StorageSize())
}

func TestCustomPropertyRoundTrip(t *testing.T) {
	ft := newFakeTree()
	a := newFakeNode("a")
	store := map[Handle]any{a: "new"}
	md := New(ft,
		WithCustomPropertyGetter(func(_ TreeAccessor, node Handle, _ any) (any, bool) {
			v, ok := store[node]
			return v, ok
		}),
		WithCustomRevertCallback(func(_ TreeAccessor, node Handle, _, original any) {
			store[node] = original
		}),
	)

	md.Custom(a, "k", "old")
	assert.True(t, md.Mutated(nil))

	diags := md.Revert()
	assert.Empty(t, diags)
	assert.Equal(t, "old", store[a])
}

func TestDiffRejectsInvalidFilter(t *testing.T) {
	md := New(newFakeTree())
	_, err := md.Diff(DiffFilter(1 << 15))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDiffReportsOriginalAndMutatedAttribute(t *testing.T) {
	ft := newFakeTree()
	a := newFakeNode("a")
	a.attrs["class"] = "x"
	md := New(ft)

	ft.AttributeSet(a, "class", "y")
	md.Attribute(a, "class", "", strp("x"))

	out, err := md.Diff(DiffAll)
	require.NoError(t, err)
	require.Contains(t, out, Handle(a))
	vp := out[a].Attribute["class"]
	assert.Equal(t, "x", vp.Original)
	assert.Equal(t, "y", vp.Mutated)
}

func TestDiffReportsChildrenPositions(t *testing.T) {
	ft := newFakeTree()
	r, _, b, c := buildRABC(ft)
	md := New(ft)
	driveRemove(ft, md, c)

	out, err := md.Diff(DiffAll)
	require.NoError(t, err)
	require.Contains(t, out, Handle(c))
	cd := out[c].Children
	require.NotNil(t, cd)
	require.NotNil(t, cd.Original)
	assert.Equal(t, Handle(r), cd.Original.Parent)
	prevNode, ok := cd.Original.Prev.IsNode()
	require.True(t, ok)
	assert.Equal(t, Handle(b), prevNode)
}

func TestRangeNilWhenNothingTracked(t *testing.T) {
	md := New(newFakeTree())
	rng, err := md.Range(nil)
	require.NoError(t, err)
	assert.Nil(t, rng)
}

func TestRangeSelectsSingleDirtyNode(t *testing.T) {
	ft := newFakeTree()
	a := newFakeNode("a")
	a.attrs["class"] = "x"
	md := New(ft)

	ft.AttributeSet(a, "class", "y")
	md.Attribute(a, "class", "", strp("x"))

	rng, err := md.Range(nil)
	require.NoError(t, err)
	require.NotNil(t, rng)
	assert.Equal(t, Handle(a), rng.Start.Node)
	assert.Equal(t, Handle(a), rng.End.Node)
}

func TestClearDropsAllTrackedState(t *testing.T) {
	ft := newFakeTree()
	r, _, _, c := buildRABC(ft)
	md := New(ft)
	driveRemove(ft, md, c)
	require.True(t, md.Mutated(r))

	md.Clear()
	assert.False(t, md.Mutated(r))
	assert.Equal(t, 0, md.StorageSize())
}

func TestSynchronizeReturnsOutstandingCount(t *testing.T) {
	ft := newFakeTree()
	a := newFakeNode("a")
	a.attrs["class"] = "x"
	md := New(ft)

	ft.AttributeSet(a, "class", "x") // toggled back: clean
	md.Attribute(a, "class", "", strp("x"))

	assert.Equal(t, 0, md.Synchronize())
}

func TestRevertHandlesPropertyAndTreeTogether(t *testing.T) {
	ft := newFakeTree()
	r, a, b, c := buildRABC(ft)
	md := New(ft)

	driveRemove(ft, md, b) // floating, never re-inserted: both original neighbors known

	a.attrs["class"] = "x"
	ft.AttributeSet(a, "class", "y")
	md.Attribute(a, "class", "", strp("x"))

	diags := md.Revert()
	assert.Empty(t, diags)
	v, _ := ft.AttributeGet(a, "class")
	assert.Equal(t, "x", v)
	assert.Equal(t, []Handle{a, b, c}, childHandles(r))
}
