// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithPrettyLoggerWritesColorizedTrace(t *testing.T) {
	var out, errOut bytes.Buffer
	ft := newFakeTree()
	md := New(ft, WithPrettyLogger(&out, &errOut, slog.LevelDebug))

	md.log.Debug("fixed", LoggerHandleKey, "n1", LoggerSideKey, "next")

	assert.Contains(t, out.String(), "[MUTDIFF]")
	assert.Contains(t, out.String(), "fixed")
	assert.Equal(t, 0, errOut.Len())
}
