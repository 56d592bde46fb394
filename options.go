// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

import (
	"io"
	"log/slog"

	"github.com/johanneswilm/mutationdiff/internal/slogpretty"
)

// Option configures a [MutationDiff] at construction time via [New].
type Option interface {
	apply(*MutationDiff)
}

type optionFunc func(*MutationDiff)

func (o optionFunc) apply(d *MutationDiff) {
	o(d)
}

// WithLogger attaches a [slog.Handler] the engine logs to at Debug level for
// every promise resolution, fixedness-propagation step, and revert decision.
// By default, [MutationDiff] logs nowhere.
func WithLogger(handler slog.Handler) Option {
	return optionFunc(func(d *MutationDiff) {
		if handler != nil {
			d.log = slog.New(handler)
		}
	})
}

// WithPrettyLogger attaches a colorized, human-readable [slog.Handler] that
// writes Debug/Info/Warn records to stdout and records at the assertion
// level or above to stderr. This is a convenience over [WithLogger] meant
// for interactive debugging of a [MutationDiff] session, not production use.
func WithPrettyLogger(stdout, stderr io.Writer, level slog.Leveler) Option {
	return optionFunc(func(d *MutationDiff) {
		d.log = slog.New(slogpretty.NewHandler(stdout, stderr, level))
	})
}

// WithAssertions controls whether the M1-M4/F1-F2/S1 invariant checks panic
// with an [*AssertionViolationError] (enable=true, the default) or are only
// logged at Error level and otherwise ignored (enable=false). Embedders that
// have already fuzz-tested their notification stream against P1-P7 (see
// spec §8) may disable assertions to shave the check cost on a hot path.
func WithAssertions(enable bool) Option {
	return optionFunc(func(d *MutationDiff) {
		d.assertionsFatal = enable
	})
}

// WithAttributeFilter restricts [PropertyCache.mark] to attributes matched by
// m. A nil matcher (the default) tracks every attribute. See
// [AttributeMatcher], resolving spec §9 Open Question (a).
func WithAttributeFilter(m AttributeMatcher) Option {
	return optionFunc(func(d *MutationDiff) {
		d.attrFilter = m
	})
}

// CustomPropertyGetter reads the current value of a custom (non-native)
// property from the live tree, used by [MutationDiff.Custom].
type CustomPropertyGetter func(tree TreeAccessor, node Handle, key any) (value any, ok bool)

// WithCustomPropertyGetter installs the callback [MutationDiff.Custom] uses
// to read a custom property's current value before delegating to
// [PropertyCache.mark].
func WithCustomPropertyGetter(get CustomPropertyGetter) Option {
	return optionFunc(func(d *MutationDiff) {
		d.customGet = get
	})
}

// CustomPropertyRevert applies a reverted custom property value back onto the
// live tree, used by [MutationDiff.Revert]. Per spec §9 Open Question (b), if
// this is nil, dirty custom entries are silently skipped during revert,
// matching the source's behavior.
type CustomPropertyRevert func(tree TreeAccessor, node Handle, key, original any)

// WithCustomRevertCallback installs the callback [MutationDiff.Revert] uses
// to apply reverted custom property values.
func WithCustomRevertCallback(revert CustomPropertyRevert) Option {
	return optionFunc(func(d *MutationDiff) {
		d.customRevert = revert
	})
}
