// Package confwatch provides hot-reload of a structured configuration file
// for Go applications. It watches a file path for changes, reloads and
// validates the new configuration, tracks a version history with rollback
// support, and notifies subscribers of successful or failed changes, all
// without the consuming application restarting.
//
// Key Features:
//   - Cross-platform file change detection (fsnotify with polling fallback)
//   - Change callback system with old/new configuration comparison
//   - Configuration version tracking with bounded snapshot history
//   - Rollback to any version still present in history
//   - Bounded change-event log for observability
//   - Hot-reloadable vs. non-reloadable field distinction
//
// Basic Usage:
//
//	watcher := confwatch.New("config.yaml")
//
//	watcher.OnChange(func(oldCfg, newCfg confwatch.Config) {
//		log.Printf("configuration updated to version %d", watcher.Version())
//	})
//	watcher.OnError(func(message string) {
//		log.Printf("configuration reload failed: %s", message)
//	})
//
//	if err := watcher.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer watcher.Stop()
//
//	// ... application runs, reading watcher.Current() as needed ...
//
// Reliability:
// A failed reload (unreadable or invalid file) never disturbs the current
// configuration: the application keeps running on its last-known-good
// configuration and the failure is surfaced through error callbacks and the
// change-event log. Callback panics are recovered at the invocation site so a
// misbehaving subscriber cannot take down the watch goroutine.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package confwatch
