// fsnotify_source.go: Native file watching through fsnotify
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FsnotifySource watches the parent directory of the configuration file
// through the platform's native facility (inotify on Linux, kqueue on the
// BSDs and macOS, ReadDirectoryChangesW on Windows) and filters events by
// filename.
//
// Watching the directory rather than the file itself tolerates atomic
// replacement via rename: editors and deployment tools that write a
// temporary file and rename it over the target produce a create event for
// the watched name, which this source reports as a change. Transient
// deletion of the file raises no error; the directory watch is retained and
// the next create or write of the name is reported normally. An atomic swap
// of the parent directory itself (e.g. a symlinked config directory being
// repointed) is not tracked.
type FsnotifySource struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	fileName string
}

// NewFsnotifySource creates a native file watching event source.
func NewFsnotifySource() *FsnotifySource {
	return &FsnotifySource{}
}

// Init implements EventSource. fsnotify exposes no matchable sentinel for
// an unsupported platform, so every setup failure surfaces as watch_failed
// with the backend's error as the cause.
func (s *FsnotifySource) Init(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return NewWatchFailedError(path, err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return NewWatchFailedError(path, err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.fileName = filepath.Base(path)
	s.mu.Unlock()
	return nil
}

// WaitForEvent implements EventSource.
func (s *FsnotifySource) WaitForEvent() EventOutcome {
	s.mu.Lock()
	watcher, fileName := s.watcher, s.fileName
	s.mu.Unlock()
	if watcher == nil {
		return EventError
	}

	timer := time.NewTimer(waitTimeout)
	defer timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return EventError
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			// Write covers in-place modification, Create covers both fresh
			// files and atomic replace-via-rename. Remove and Rename of the
			// watched name mean transient absence: keep waiting for the
			// name to reappear instead of reloading a missing file.
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				return EventChanged
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return EventError
			}
			return EventError
		case <-timer.C:
			return EventTimeout
		}
	}
}

// Cleanup implements EventSource. Closing the fsnotify watcher closes its
// channels, which unblocks a concurrent WaitForEvent call.
func (s *FsnotifySource) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		_ = s.watcher.Close()
		s.watcher = nil
	}
}
