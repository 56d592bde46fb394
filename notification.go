// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

// Kind discriminates the three notification record shapes described in
// spec §6.
type Kind uint8

const (
	AttributesKind Kind = iota
	CharacterDataKind
	ChildListKind
)

// Record is the common interface of the three notification record shapes
// [MutationDiff.Record] dispatches on.
type Record interface {
	Kind() Kind
}

// AttributesRecord reports that target's name (optionally namespaced)
// attribute changed from OldValue to its current live value.
type AttributesRecord struct {
	Target    Handle
	Name      string
	Namespace string
	OldValue  *string
}

func (AttributesRecord) Kind() Kind { return AttributesKind }

// CharacterDataRecord reports that target's character data changed from
// OldValue to its current live value.
type CharacterDataRecord struct {
	Target   Handle
	OldValue string
}

func (CharacterDataRecord) Kind() Kind { return CharacterDataKind }

// ChildListRecord reports a single batched child-list mutation: Removed and
// Added relative to the point-in-time Previous/Next siblings framing the
// window inside Target, per spec §4.4.
type ChildListRecord struct {
	Target          Handle
	Removed         []Handle
	Added           []Handle
	PreviousSibling Handle
	NextSibling     Handle
}

func (ChildListRecord) Kind() Kind { return ChildListKind }
