// panic_recovery.go: Standardized panic recovery with stack trace support
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"runtime"
)

// withStackRecover returns a panic recovery function that logs panic details
// including the full stack trace. A panicking change or error callback must
// not abort the reload that triggered it or take down the watch goroutine;
// this is the single boundary where such panics are swallowed.
//
// The returned function should be called with defer.
func withStackRecover(logger Logger) func() {
	return func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)

			logger.Error("Panic recovered",
				"panic", r,
				"stack", string(buf[:n]))
		}
	}
}
