// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

// Package mutationdiff maintains the minimum delta between a live, ordered
// tree and the state it was in when tracking began, from a stream of
// batched child-list/attribute/character-data notifications, without ever
// re-walking the tree.
package mutationdiff

import "log/slog"

// MutationDiff is the façade described in spec §4.7: it receives
// notification records, dispatches them to [PropertyCache] or
// [TreeMutations], and answers the mutated/range/diff/revert/clear/
// synchronize/storage_size queries.
type MutationDiff struct {
	access TreeAccessor

	log             *slog.Logger
	assertionsFatal bool
	attrFilter      AttributeMatcher
	customGet       CustomPropertyGetter
	customRevert    CustomPropertyRevert

	props *PropertyCache
	tree  *TreeMutations
}

// New constructs a [MutationDiff] bound to tree, applying opts in order.
// Tracking begins at the moment New returns: everything observed afterward
// through [MutationDiff.Record] (or its component methods) is measured
// against the tree's shape right now.
func New(tree TreeAccessor, opts ...Option) *MutationDiff {
	d := &MutationDiff{
		access:          tree,
		log:             discardLogger(),
		assertionsFatal: true,
		props:           newPropertyCache(),
	}
	for _, o := range opts {
		o.apply(d)
	}
	d.tree = newTreeMutations(d.log, d.assertionsFatal)
	return d
}

// Record dispatches r by its [Kind] to [MutationDiff.Attribute],
// [MutationDiff.Data], or [MutationDiff.Children]. Returns
// [ErrInvalidArgument] for an unrecognized [Record] implementation.
func (d *MutationDiff) Record(r Record) error {
	switch rec := r.(type) {
	case AttributesRecord:
		d.Attribute(rec.Target, rec.Name, rec.Namespace, rec.OldValue)
	case CharacterDataRecord:
		d.Data(rec.Target, rec.OldValue)
	case ChildListRecord:
		d.Children(rec.Target, rec.Removed, rec.Added, rec.PreviousSibling, rec.NextSibling)
	default:
		return ErrInvalidArgument
	}
	return nil
}

// Attribute observes that target's name (namespace-qualified) attribute used
// to hold old and currently holds whatever [TreeAccessor.AttributeGet]
// returns. A nil old means the attribute was absent before the change.
// Attributes excluded by [WithAttributeFilter] are ignored entirely.
func (d *MutationDiff) Attribute(target Handle, name, namespace string, old *string) {
	if d.attrFilter != nil && !d.attrFilter.Match(name, namespace) {
		return
	}
	var current any
	if v, ok := d.access.AttributeGet(target, name); ok {
		current = v
	}
	var oldVal any
	if old != nil {
		oldVal = *old
	}
	d.props.mark(target, NativeProp, name, current, oldVal)
}

// Data observes that target's character data used to hold old and currently
// holds whatever [TreeAccessor.DataGet] returns.
func (d *MutationDiff) Data(target Handle, old string) {
	current := d.access.DataGet(target)
	d.props.mark(target, NativeProp, DataKey, current, old)
}

// Custom observes an embedder-defined property under key, using
// [WithCustomPropertyGetter] to read its current value. A nil getter makes
// this a no-op, since there is no tree-native way to read the current value.
func (d *MutationDiff) Custom(target Handle, key, old any) {
	if d.customGet == nil {
		return
	}
	current, ok := d.customGet(d.access, target, key)
	if !ok {
		current = nil
	}
	d.props.mark(target, CustomProp, key, current, old)
}

// Children delegates a batched child-list mutation to [TreeMutations].
func (d *MutationDiff) Children(parent Handle, removed, added []Handle, prev, next Handle) {
	d.tree.mutation(parent, removed, added, prev, next)
}

// Mutated reports whether the tree under root differs from its state at
// tracking start: true iff some [PropertyCache] entry under root is dirty,
// or some floating record's current or original parent is under root. A nil
// root means "anywhere."
func (d *MutationDiff) Mutated(root Handle) bool {
	for h := range d.props.nodes() {
		if root == nil || d.access.Contains(root, h) {
			return true
		}
	}
	for h, rec := range d.tree.floating {
		if root == nil {
			return true
		}
		if d.access.Contains(root, h) {
			return true
		}
		if rec.Original != nil && d.containedParent(root, rec.Original.Parent) {
			return true
		}
		if rec.Mutated != nil && d.containedParent(root, rec.Mutated.Parent) {
			return true
		}
	}
	return false
}

func (d *MutationDiff) containedParent(root, parent Handle) bool {
	return parent != nil && d.access.Contains(root, parent)
}

// Range computes the minimal [BoundaryRange] bracketing every difference
// under root (every dirty-property or floating node), per spec §4.7. A nil
// root spans the whole tracked scope, and returns [ErrDisconnectedRange] if
// the differences span disjoint trees. Returns (nil, nil) when there is
// nothing to report.
func (d *MutationDiff) Range(root Handle) (*BoundaryRange, error) {
	var result *BoundaryRange
	extend := func(b BoundaryRange) error {
		if result == nil {
			r := b
			result = &r
			return nil
		}
		merged, err := result.Extend(d.access, b)
		if err != nil {
			return err
		}
		result = &merged
		return nil
	}

	for h := range d.props.nodes() {
		if root != nil && !d.access.Contains(root, h) {
			continue
		}
		if err := extend(SelectNode(h)); err != nil {
			return nil, err
		}
	}

	for h, rec := range d.tree.floating {
		if root != nil && !d.access.Contains(root, h) {
			// A removed node counts when its original parent is under root.
			if rec.Mutated != nil || rec.Original == nil || !d.containedParent(root, rec.Original.Parent) {
				continue
			}
		}
		b, ok := d.floatingBoundary(h, rec)
		if !ok {
			continue
		}
		if err := extend(b); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// floatingBoundary returns the boundary range rec contributes to
// [MutationDiff.Range]: the node itself if still present, or the gap between
// its fixed original neighbors if removed, collapsing to whichever single
// side is known, per spec §4.7.
func (d *MutationDiff) floatingBoundary(h Handle, rec *MovedNodeRecord) (BoundaryRange, bool) {
	if rec.Mutated != nil {
		return SelectNode(h), true
	}
	if rec.Original == nil {
		return BoundaryRange{}, false
	}
	prevFixed, havePrev := fixedNeighbor(d.tree, rec.Original.Prev)
	nextFixed, haveNext := fixedNeighbor(d.tree, rec.Original.Next)
	switch {
	case havePrev && haveNext:
		return BoundaryRange{Start: Boundary{Node: prevFixed, At: After}, End: Boundary{Node: nextFixed, At: Before}}, true
	case havePrev:
		return BoundaryRange{Start: Boundary{Node: prevFixed, At: After}, End: Boundary{Node: prevFixed, At: After}}, true
	case haveNext:
		return BoundaryRange{Start: Boundary{Node: nextFixed, At: Before}, End: Boundary{Node: nextFixed, At: Before}}, true
	case rec.Original.Parent != nil:
		return SelectNode(rec.Original.Parent), true
	default:
		return BoundaryRange{}, false
	}
}

func fixedNeighbor(tree *TreeMutations, s Sibling) (Handle, bool) {
	h, ok := s.IsNode()
	if !ok {
		return nil, false
	}
	if _, floating := tree.floating[h]; floating {
		return nil, false
	}
	return h, true
}

// Diff materializes [MutationDiff.Seq] into a map, per spec §4.7.
func (d *MutationDiff) Diff(filter DiffFilter) (map[Handle]NodeDiff, error) {
	if !filter.valid() {
		return nil, ErrInvalidArgument
	}
	out := make(map[Handle]NodeDiff)
	for h, nd := range d.Seq(filter) {
		out[h] = nd
	}
	return out, nil
}

// nodeDiff assembles h's [NodeDiff] under filter, reading current values
// from the live tree (or [CustomPropertyGetter]) only for the sides filter
// requests.
func (d *MutationDiff) nodeDiff(h Handle, filter DiffFilter) NodeDiff {
	var nd NodeDiff
	if np, ok := d.props.byNode[h]; ok {
		if filter.has(DiffData) {
			if entry, ok2 := np.native[DataKey]; ok2 && entry.dirty {
				vp := ValuePair{HasOriginal: filter.has(DiffOriginal), HasMutated: filter.has(DiffMutated)}
				if vp.HasOriginal {
					vp.Original, _ = entry.original.(string)
				}
				if vp.HasMutated {
					vp.Mutated = d.access.DataGet(h)
				}
				nd.Data = &vp
			}
		}
		if filter.has(DiffAttribute) {
			for key, entry := range np.native {
				if key == DataKey || !entry.dirty {
					continue
				}
				name, _ := key.(string)
				vp := ValuePair{HasOriginal: filter.has(DiffOriginal), HasMutated: filter.has(DiffMutated)}
				if vp.HasOriginal {
					vp.Original = entry.original
				}
				if vp.HasMutated {
					if v, ok3 := d.access.AttributeGet(h, name); ok3 {
						vp.Mutated = v
					}
				}
				if nd.Attribute == nil {
					nd.Attribute = make(map[string]ValuePair)
				}
				nd.Attribute[name] = vp
			}
		}
		if filter.has(DiffCustom) {
			for key, entry := range np.custom {
				if !entry.dirty {
					continue
				}
				vp := ValuePair{HasOriginal: filter.has(DiffOriginal), HasMutated: filter.has(DiffMutated)}
				if vp.HasOriginal {
					vp.Original = entry.original
				}
				if vp.HasMutated && d.customGet != nil {
					if v, ok3 := d.customGet(d.access, h, key); ok3 {
						vp.Mutated = v
					}
				}
				if nd.Custom == nil {
					nd.Custom = make(map[any]ValuePair)
				}
				nd.Custom[key] = vp
			}
		}
	}
	if filter.has(DiffChildren) {
		if rec, ok := d.tree.floating[h]; ok {
			cd := &ChildrenDiff{}
			if filter.has(DiffOriginal) {
				cd.Original = rec.Original
			}
			if filter.has(DiffMutated) {
				cd.Mutated = rec.Mutated
			}
			nd.Children = cd
		}
	}
	return nd
}

// Revert restores the live tree to its state at tracking start:
// [PropertyCache] entries first, then [TreeMutations] move groups, per spec
// §4.7. It implicitly synchronizes first so that any promise resolvable
// from the current live tree is resolved before placement is attempted.
// Groups it cannot place (both original siblings unresolved) are skipped and
// reported, per spec §7's insufficient-information handling; other groups
// still revert. Dirty custom properties are restored through the callback
// installed with [WithCustomRevertCallback]; without one they are silently
// skipped.
func (d *MutationDiff) Revert() []*RevertDiagnostic {
	d.tree.synchronize(d.access)

	dirty := make([]Handle, 0, d.props.size())
	for h := range d.props.nodes() {
		dirty = append(dirty, h)
	}
	for _, h := range dirty {
		d.props.revert(d.access, h, d.customRevert)
	}

	return d.tree.revert(d.access)
}

// Clear drops all tracked state without touching the live tree.
func (d *MutationDiff) Clear() {
	d.props.clear()
	d.tree.clear()
}

// Synchronize reads live tree state to resolve everything resolvable right
// now (dropped clean properties, resumed promises), and returns the combined
// count of state still outstanding (dirty properties plus floating
// records).
func (d *MutationDiff) Synchronize() int {
	propDirty := d.props.synchronize()
	floating := d.tree.synchronize(d.access)
	return propDirty + floating
}

// StorageSize returns props.size() + floating set size, per spec §4.7.
func (d *MutationDiff) StorageSize() int {
	return d.props.size() + d.tree.storageSize()
}
