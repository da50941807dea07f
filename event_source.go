// event_source.go: File change event source abstraction
//
// The watcher consumes file change notifications through the EventSource
// interface so the detection mechanism stays interchangeable: the fsnotify
// source for native OS watching, the polling source for filesystems without
// native support, and the manual source for deterministic tests.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"sync"
	"time"
)

// EventOutcome is the result of one EventSource wait cycle.
type EventOutcome int

const (
	// EventTimeout means the wait window elapsed with no relevant change.
	EventTimeout EventOutcome = iota

	// EventChanged means the watched file plausibly changed.
	EventChanged

	// EventError means the source can no longer deliver notifications.
	EventError
)

// String returns a human-readable name for the outcome.
func (o EventOutcome) String() string {
	switch o {
	case EventTimeout:
		return "timeout"
	case EventChanged:
		return "changed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// waitTimeout bounds a single WaitForEvent call so the watch goroutine can
// observe a stop request promptly even with no file activity.
const waitTimeout = 500 * time.Millisecond

// settleDelay is applied after a detected change before reloading, to
// coalesce rapid successive write events (e.g. truncate+write) into one
// reload.
const settleDelay = 100 * time.Millisecond

// EventSource is the blocking primitive the watch goroutine loops over.
//
// Implementations must support repeated Init/Cleanup cycles so a stopped
// watcher can be started again. Cleanup must be safe to call from a
// different goroutine than the one blocked in WaitForEvent and must cause
// that call to return.
type EventSource interface {
	// Init establishes the underlying watch for path.
	Init(path string) error

	// WaitForEvent blocks until the watched file changes, the wait window
	// elapses, or the source fails. It must return within roughly
	// waitTimeout even with no activity.
	WaitForEvent() EventOutcome

	// Cleanup releases the underlying watch and unblocks any in-progress
	// WaitForEvent call.
	Cleanup()
}

// ManualSource is an EventSource triggered programmatically. It exists to
// make the reload pipeline and watcher lifecycle testable without real
// filesystem events, and satisfies the same contract as the production
// sources.
type ManualSource struct {
	mu          sync.Mutex
	initialized bool
	events      chan EventOutcome
	done        chan struct{}
}

// NewManualSource creates a manual event source.
func NewManualSource() *ManualSource {
	return &ManualSource{}
}

// Init implements EventSource.
func (s *ManualSource) Init(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(chan EventOutcome, 16)
	s.done = make(chan struct{})
	s.initialized = true
	return nil
}

// WaitForEvent implements EventSource.
func (s *ManualSource) WaitForEvent() EventOutcome {
	s.mu.Lock()
	events, done := s.events, s.done
	s.mu.Unlock()
	if events == nil {
		return EventError
	}

	timer := time.NewTimer(waitTimeout)
	defer timer.Stop()

	select {
	case outcome := <-events:
		return outcome
	case <-done:
		return EventError
	case <-timer.C:
		return EventTimeout
	}
}

// Cleanup implements EventSource.
func (s *ManualSource) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		close(s.done)
		s.initialized = false
	}
}

// Trigger queues a change notification as if the watched file had been
// modified. It fails if the source has not been initialized by a started
// watcher.
func (s *ManualSource) Trigger() error {
	return s.push(EventChanged)
}

// Fail queues an error outcome, driving the watch goroutine into its
// degraded state.
func (s *ManualSource) Fail() error {
	return s.push(EventError)
}

func (s *ManualSource) push(outcome EventOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return NewNotStartedError()
	}
	select {
	case s.events <- outcome:
	default:
		// Queue full: the pending notifications already cover this change.
	}
	return nil
}
