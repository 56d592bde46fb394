// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

// TreeAccessor is the embedder's tree-access trait, per spec §6. The engine
// reaches the live tree only through this interface. Live siblings are read
// and nodes are moved only from [MutationDiff.Revert] and
// [MutationDiff.Synchronize]; the other methods use it to read current
// property values and to ask about containment and document order.
type TreeAccessor interface {
	// ParentOf returns node's current parent, or nil if node is detached/root.
	ParentOf(node Handle) Handle
	// SiblingsOf returns node's current previous and next siblings. Either
	// may be nil to mean "end of parent" on that side.
	SiblingsOf(node Handle) (prev, next Handle)
	// ChildIndex returns node's current index among parent's children, or -1
	// if node is not currently a child of parent.
	ChildIndex(parent, node Handle) int
	// Contains reports whether node is root or a descendant of root.
	Contains(root, node Handle) bool
	// CompareDocumentPosition reports the relative tree position of a to b,
	// analogous to the DOM method of the same name: used by [BoundaryRange]
	// to order boundaries.
	CompareDocumentPosition(a, b Handle) DocumentPosition

	// Remove detaches node from its current parent.
	Remove(node Handle)
	// InsertBefore inserts node into parent immediately before ref. A nil ref
	// means "append."
	InsertBefore(parent, node, ref Handle)
	// Append inserts node as parent's last child.
	Append(parent, node Handle)
	// Prepend inserts node as parent's first child.
	Prepend(parent, node Handle)

	// AttributeGet/AttributeSet/AttributeRemove manipulate an element's
	// attribute.
	AttributeGet(node Handle, name string) (value string, ok bool)
	AttributeSet(node Handle, name, value string)
	AttributeRemove(node Handle, name string)
	// DataGet/DataSet manipulate a character-data node's data.
	DataGet(node Handle) string
	DataSet(node Handle, data string)
}

// DocumentPosition mirrors the DOM's compareDocumentPosition bitmask, scoped
// to the handful of relations [BoundaryRange] needs.
type DocumentPosition uint8

const (
	PositionDisconnected DocumentPosition = iota
	PositionPreceding
	PositionFollowing
	PositionContains
	PositionContainedBy
	PositionSame
)
