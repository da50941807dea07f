// poll_source.go: Stat-based polling fallback event source
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"os"
	"sync"
	"time"
)

// PollSource detects changes by comparing os.Stat results between polling
// cycles. It serves filesystems where native watching cannot be established
// (network mounts, some container overlays) at the cost of detection latency
// equal to the polling interval.
type PollSource struct {
	interval time.Duration

	mu      sync.Mutex
	path    string
	done    chan struct{}
	exists  bool
	modTime time.Time
	size    int64
}

// NewPollSource creates a polling event source. An interval of 0 selects the
// default wait window; intervals above the wait window are clamped so a
// pending stop request is still observed promptly.
func NewPollSource(interval time.Duration) *PollSource {
	if interval <= 0 || interval > waitTimeout {
		interval = waitTimeout
	}
	return &PollSource{interval: interval}
}

// Init implements EventSource. A missing file is not an error: the source
// records its absence and reports a change when it appears.
func (s *PollSource) Init(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.path = path
	s.done = make(chan struct{})
	s.exists = false
	if info, err := os.Stat(path); err == nil {
		s.exists = true
		s.modTime = info.ModTime()
		s.size = info.Size()
	}
	return nil
}

// WaitForEvent implements EventSource.
func (s *PollSource) WaitForEvent() EventOutcome {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return EventError
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	select {
	case <-done:
		return EventError
	case <-timer.C:
	}

	return s.compareStat()
}

func (s *PollSource) compareStat() EventOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Transient absence: wait for the file to come back.
			s.exists = false
			return EventTimeout
		}
		return EventError
	}

	changed := !s.exists || !info.ModTime().Equal(s.modTime) || info.Size() != s.size
	s.exists = true
	s.modTime = info.ModTime()
	s.size = info.Size()

	if changed {
		return EventChanged
	}
	return EventTimeout
}

// Cleanup implements EventSource.
func (s *PollSource) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}
