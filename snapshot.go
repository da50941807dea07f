// snapshot.go: Versioned configuration snapshots and the change-event log
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"sync"
	"time"
)

// DefaultMaxHistory is the default number of configuration snapshots
// retained for rollback.
const DefaultMaxHistory = 10

// maxEventLog caps the change-event log; the oldest entries are evicted
// first.
const maxEventLog = 100

// Snapshot is an immutable, versioned, timestamped copy of a configuration
// retained for rollback.
type Snapshot struct {
	// Configuration version number
	Version uint64 `json:"version"`

	// Timestamp when this configuration became active
	Timestamp time.Time `json:"timestamp"`

	// The configuration data
	Config Config `json:"config"`
}

// ChangeEvent records one reload attempt, successful or not. Events are
// never mutated after creation.
type ChangeEvent struct {
	// Timestamp of the attempt
	Timestamp time.Time `json:"timestamp"`

	// Configuration version in effect after the attempt
	Version uint64 `json:"version"`

	// Dot-separated paths of the fields that changed (successful attempts)
	ChangedFields []string `json:"changed_fields,omitempty"`

	// Whether the attempt committed a new configuration
	Success bool `json:"success"`

	// Error message for failed attempts
	ErrorMessage string `json:"error_message,omitempty"`
}

// snapshotHistory is a bounded, ordered history of configuration snapshots.
// Its mutex is separate from the watcher's configuration lock so history
// reads never contend with Current() readers.
type snapshotHistory struct {
	mu      sync.Mutex
	max     int
	entries []Snapshot
}

func newSnapshotHistory(max int) *snapshotHistory {
	if max < 1 {
		max = 1
	}
	return &snapshotHistory{max: max}
}

// append adds a snapshot as the newest entry, evicting the oldest entries
// over capacity.
func (h *snapshotHistory) append(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, snap)
	if excess := len(h.entries) - h.max; excess > 0 {
		h.entries = append(h.entries[:0:0], h.entries[excess:]...)
	}
}

// find returns a copy of the snapshot with the exact version, if retained.
func (h *snapshotHistory) find(version uint64) (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, snap := range h.entries {
		if snap.Version == version {
			snap.Config = snap.Config.Clone()
			return snap, true
		}
	}
	return Snapshot{}, false
}

// list returns up to count snapshots, newest first; count 0 returns all.
// The returned snapshots hold independent configuration copies.
func (h *snapshotHistory) list(count int) []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.entries)
	if count <= 0 || count > n {
		count = n
	}
	result := make([]Snapshot, 0, count)
	for i := n - 1; i >= n-count; i-- {
		snap := h.entries[i]
		snap.Config = snap.Config.Clone()
		result = append(result, snap)
	}
	return result
}

func (h *snapshotHistory) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// changeLog is the bounded, ordered log of reload attempts.
type changeLog struct {
	mu      sync.Mutex
	entries []ChangeEvent
}

// append adds an event as the newest entry, evicting the oldest entries
// over maxEventLog.
func (l *changeLog) append(event ChangeEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, event)
	if excess := len(l.entries) - maxEventLog; excess > 0 {
		l.entries = append(l.entries[:0:0], l.entries[excess:]...)
	}
}

// recent returns up to count events, newest first; count 0 returns all.
func (l *changeLog) recent(count int) []ChangeEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	if count <= 0 || count > n {
		count = n
	}
	result := make([]ChangeEvent, 0, count)
	for i := n - 1; i >= n-count; i-- {
		event := l.entries[i]
		event.ChangedFields = append([]string(nil), event.ChangedFields...)
		result = append(result, event)
	}
	return result
}
