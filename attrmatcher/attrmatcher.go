// Package attrmatcher provides a generic unwrapping helper for
// [mutationdiff.AttributeMatcher] values, mirroring how [errors.As] walks an
// error's Unwrap chain.
package attrmatcher

import "github.com/johanneswilm/mutationdiff"

// As finds the first matcher in matcher's Unwrap chain that assigns to
// *target, and if found, sets target and returns true.
func As[T mutationdiff.AttributeMatcher](matcher mutationdiff.AttributeMatcher, target *T) bool {
	if matcher == nil {
		return false
	}
	if target == nil {
		panic("mutationdiff: target cannot be nil")
	}
	return as(matcher, target)
}

func as[T mutationdiff.AttributeMatcher](matcher mutationdiff.AttributeMatcher, target *T) bool {
	for {
		if x, ok := matcher.(T); ok {
			*target = x
			return true
		}
		if x, ok := matcher.(interface{ As(any) bool }); ok && x.As(target) {
			return true
		}
		switch x := matcher.(type) {
		case interface{ Unwrap() mutationdiff.AttributeMatcher }:
			matcher = x.Unwrap()
			if matcher == nil {
				return false
			}
		case interface{ Unwrap() []mutationdiff.AttributeMatcher }:
			for _, m := range x.Unwrap() {
				if m == nil {
					continue
				}
				if as(m, target) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
}
