// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

// RangeSide discriminates the two sides of a [Boundary], per spec §4.8.
type RangeSide uint8

const (
	Before RangeSide = iota
	After
)

// Boundary is a node-anchored point: immediately before or after node.
type Boundary struct {
	Node Handle
	At   RangeSide
}

// BoundaryRange is the pair-of-boundaries value type described in spec §4.8.
// It is a pure value: it never stores a [TreeAccessor] reference, since
// ordering two boundaries requires consulting the live tree only at the
// moment of comparison.
type BoundaryRange struct {
	Start Boundary
	End   Boundary
}

// SelectNode returns the range bracketing exactly node.
func SelectNode(node Handle) BoundaryRange {
	return BoundaryRange{
		Start: Boundary{Node: node, At: Before},
		End:   Boundary{Node: node, At: After},
	}
}

// SetStart returns a copy of r with its start boundary replaced.
func (r BoundaryRange) SetStart(node Handle, after bool) BoundaryRange {
	at := Before
	if after {
		at = After
	}
	r.Start = Boundary{Node: node, At: at}
	return r
}

// SetEnd returns a copy of r with its end boundary replaced.
func (r BoundaryRange) SetEnd(node Handle, before bool) BoundaryRange {
	at := After
	if before {
		at = Before
	}
	r.End = Boundary{Node: node, At: at}
	return r
}

// CloneRange returns a copy of r (BoundaryRange has no reference fields, so
// this is just r itself, named for parity with the source's surface).
func (r BoundaryRange) CloneRange() BoundaryRange {
	return r
}

// IsEqual reports whether r and other share the same start and end boundary.
func (r BoundaryRange) IsEqual(other BoundaryRange) bool {
	return r.Start == other.Start && r.End == other.End
}

// Extend returns the union of r and other: the earlier of the two starts and
// the later of the two ends, honoring containment. Returns
// [ErrDisconnectedRange] if tree reports the two ranges live in disjoint
// trees.
func (r BoundaryRange) Extend(tree TreeAccessor, other BoundaryRange) (BoundaryRange, error) {
	start, err := earlierBoundary(tree, r.Start, other.Start)
	if err != nil {
		return r, err
	}
	end, err := laterBoundary(tree, r.End, other.End)
	if err != nil {
		return r, err
	}
	return BoundaryRange{Start: start, End: end}, nil
}

func compareBoundary(tree TreeAccessor, a, b Boundary) (int, error) {
	if a.Node == b.Node {
		switch {
		case a.At == b.At:
			return 0, nil
		case a.At == Before:
			return -1, nil
		default:
			return 1, nil
		}
	}
	switch tree.CompareDocumentPosition(a.Node, b.Node) {
	case PositionPreceding:
		return -1, nil
	case PositionFollowing:
		return 1, nil
	case PositionContains:
		if a.At == Before {
			return -1, nil
		}
		return 1, nil
	case PositionContainedBy:
		if b.At == Before {
			return 1, nil
		}
		return -1, nil
	default:
		return 0, ErrDisconnectedRange
	}
}

func earlierBoundary(tree TreeAccessor, a, b Boundary) (Boundary, error) {
	c, err := compareBoundary(tree, a, b)
	if err != nil {
		return a, err
	}
	if c <= 0 {
		return a, nil
	}
	return b, nil
}

func laterBoundary(tree TreeAccessor, a, b Boundary) (Boundary, error) {
	c, err := compareBoundary(tree, a, b)
	if err != nil {
		return a, err
	}
	if c >= 0 {
		return a, nil
	}
	return b, nil
}
