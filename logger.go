// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/fox-toolkit/fox/blob/master/LICENSE.txt.

package mutationdiff

import (
	"io"
	"log/slog"
)

// Keys for the "built-in" logger attributes the engine attaches to its
// Debug-level trace of a [MutationDiff] session.
const (
	// LoggerEventKey is the key for the kind of internal event being traced:
	// "resolve", "discard", "propagate", "revert-skip", "revert-group".
	LoggerEventKey = "event"
	// LoggerHandleKey is the key for the [Handle] the event concerns.
	LoggerHandleKey = "node"
	// LoggerSideKey is the key for the [Side] (prev/next) the event concerns.
	LoggerSideKey = "side"
	// LoggerParentKey is the key for a [Handle] parent involved in the event.
	LoggerParentKey = "parent"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
