// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

// AttributeMatcher decides whether an attribute mutation falls inside a
// tracked scope. A nil AttributeMatcher means "track everything" and is the
// zero value used when no filter was configured via [WithAttributeFilter].
type AttributeMatcher interface {
	// Match reports whether the given attribute name/namespace pair is in scope.
	Match(name, namespace string) bool
	// Equal checks if this matcher is structurally equivalent to another.
	Equal(other AttributeMatcher) bool
}

// NameMatcher matches attributes by exact name, ignoring namespace.
type NameMatcher struct {
	Name string
}

func (m NameMatcher) Match(name, _ string) bool {
	return m.Name == name
}

func (m NameMatcher) Equal(other AttributeMatcher) bool {
	om, ok := other.(NameMatcher)
	if !ok {
		return false
	}
	return m.Name == om.Name
}

// NamespaceMatcher matches attributes by exact name and namespace.
type NamespaceMatcher struct {
	Name      string
	Namespace string
}

func (m NamespaceMatcher) Match(name, namespace string) bool {
	return m.Name == name && m.Namespace == namespace
}

func (m NamespaceMatcher) Equal(other AttributeMatcher) bool {
	om, ok := other.(NamespaceMatcher)
	if !ok {
		return false
	}
	return m.Name == om.Name && m.Namespace == om.Namespace
}

// AnyOfMatcher matches if any of its members matches. Pass one to
// [WithAttributeFilter] to track more than one attribute name.
type AnyOfMatcher []AttributeMatcher

func (m AnyOfMatcher) Match(name, namespace string) bool {
	for _, sub := range m {
		if sub != nil && sub.Match(name, namespace) {
			return true
		}
	}
	return false
}

func (m AnyOfMatcher) Equal(other AttributeMatcher) bool {
	om, ok := other.(AnyOfMatcher)
	if !ok || len(m) != len(om) {
		return false
	}
	for i := range m {
		if !m[i].Equal(om[i]) {
			return false
		}
	}
	return true
}

// Unwrap exposes the member matchers to [github.com/johanneswilm/mutationdiff/attrmatcher.As].
func (m AnyOfMatcher) Unwrap() []AttributeMatcher {
	return m
}
