// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

import "iter"

// PropKind distinguishes the native-property map (character data and element
// attributes) from the custom-property map, per spec §4.1.
type PropKind uint8

const (
	NativeProp PropKind = iota
	CustomProp
)

// dataKey is the distinguished sentinel identifying the character-data entry
// within a node's native-property map, per DESIGN NOTES §9 ("use a
// distinguished sentinel... rather than overloading a null key").
type dataKey struct{}

// DataKey is the native-property key representing a character-data node's
// `data` field, as opposed to an element attribute name.
var DataKey any = dataKey{}

type propEntry struct {
	original any
	dirty    bool
}

type nodeProps struct {
	native map[any]propEntry
	custom map[any]propEntry
	clean  int
	dirty  int
}

func newNodeProps() *nodeProps {
	return &nodeProps{native: make(map[any]propEntry), custom: make(map[any]propEntry)}
}

func (p *nodeProps) mapFor(kind PropKind) map[any]propEntry {
	if kind == NativeProp {
		return p.native
	}
	return p.custom
}

func (p *nodeProps) total() int {
	return p.clean + p.dirty
}

// PropertyCache is the per-node store of attribute/character-data/custom
// property originals described in spec §4.1, with dirty/clean accounting.
type PropertyCache struct {
	byNode map[Handle]*nodeProps
}

func newPropertyCache() *PropertyCache {
	return &PropertyCache{byNode: make(map[Handle]*nodeProps)}
}

// mark records the first observation of key on node (storing old as the
// permanent original, and classifying current vs. old as dirty/clean), or
// updates the dirty flag of an already-observed key by comparing current
// against the stored original. The original value never changes after first
// observation; only dirty toggles, per spec §4.1.
func (c *PropertyCache) mark(node Handle, kind PropKind, key, current, old any) {
	np, ok := c.byNode[node]
	if !ok {
		np = newNodeProps()
		c.byNode[node] = np
	}
	m := np.mapFor(kind)
	if entry, seen := m[key]; seen {
		wasDirty := entry.dirty
		nowDirty := !valuesEqual(current, entry.original)
		if wasDirty != nowDirty {
			if nowDirty {
				np.dirty++
				np.clean--
			} else {
				np.dirty--
				np.clean++
			}
		}
		entry.dirty = nowDirty
		m[key] = entry
		return
	}
	dirty := !valuesEqual(current, old)
	m[key] = propEntry{original: old, dirty: dirty}
	if dirty {
		np.dirty++
	} else {
		np.clean++
	}
}

func valuesEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// revert restores every dirty entry of node onto tree, and clears node's
// cache entirely (a reverted node has nothing left to track). Character-data
// uses tree.DataSet; a nil-valued attribute original removes the attribute;
// otherwise the attribute is set. Dirty custom entries invoke callback, if
// non-nil; if callback is nil they are silently skipped, per spec §9 Open
// Question (b).
func (c *PropertyCache) revert(tree TreeAccessor, node Handle, callback CustomPropertyRevert) {
	np, ok := c.byNode[node]
	if !ok {
		return
	}
	for key, entry := range np.native {
		if !entry.dirty {
			continue
		}
		if key == DataKey {
			s, _ := entry.original.(string)
			tree.DataSet(node, s)
			continue
		}
		name, _ := key.(string)
		if entry.original == nil {
			tree.AttributeRemove(node, name)
		} else {
			s, _ := entry.original.(string)
			tree.AttributeSet(node, name, s)
		}
	}
	if callback != nil {
		for key, entry := range np.custom {
			if entry.dirty {
				callback(tree, node, key, entry.original)
			}
		}
	}
	delete(c.byNode, node)
}

// synchronize drops every clean entry across every node and returns the
// count of remaining dirty entries, per spec §4.1.
func (c *PropertyCache) synchronize() int {
	remaining := 0
	for node, np := range c.byNode {
		if np.dirty == 0 {
			delete(c.byNode, node)
			continue
		}
		for key, entry := range np.native {
			if !entry.dirty {
				delete(np.native, key)
			}
		}
		for key, entry := range np.custom {
			if !entry.dirty {
				delete(np.custom, key)
			}
		}
		np.clean = 0
		remaining += np.dirty
	}
	return remaining
}

// isDirty reports whether node has any dirty entry.
func (c *PropertyCache) isDirty(node Handle) bool {
	np, ok := c.byNode[node]
	return ok && np.dirty > 0
}

// size is the number of distinct nodes tracked, used by storage_size.
func (c *PropertyCache) size() int {
	return len(c.byNode)
}

// nodes lazily yields every node with at least one dirty entry.
func (c *PropertyCache) nodes() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for node, np := range c.byNode {
			if np.dirty == 0 {
				continue
			}
			if !yield(node) {
				return
			}
		}
	}
}

func (c *PropertyCache) clear() {
	c.byNode = make(map[Handle]*nodeProps)
}
