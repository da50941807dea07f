// event_source_test.go: tests for the event source contract and the manual
// test source
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"testing"
	"time"
)

func TestEventOutcomeString(t *testing.T) {
	tests := []struct {
		outcome EventOutcome
		want    string
	}{
		{EventTimeout, "timeout"},
		{EventChanged, "changed"},
		{EventError, "error"},
		{EventOutcome(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("EventOutcome(%d).String() = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}

func TestManualSourceDeliversTriggeredEvents(t *testing.T) {
	source := NewManualSource()
	if err := source.Init("any.yaml"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer source.Cleanup()

	if err := source.Trigger(); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if got := source.WaitForEvent(); got != EventChanged {
		t.Errorf("Expected EventChanged, got %v", got)
	}

	if err := source.Fail(); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	if got := source.WaitForEvent(); got != EventError {
		t.Errorf("Expected EventError, got %v", got)
	}
}

func TestManualSourceTimesOutWithoutEvents(t *testing.T) {
	source := NewManualSource()
	if err := source.Init("any.yaml"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer source.Cleanup()

	start := time.Now()
	outcome := source.WaitForEvent()
	elapsed := time.Since(start)

	if outcome != EventTimeout {
		t.Errorf("Expected EventTimeout, got %v", outcome)
	}
	if elapsed < waitTimeout-50*time.Millisecond {
		t.Errorf("Expected wait of roughly %v, returned after %v", waitTimeout, elapsed)
	}
}

func TestManualSourceCleanupUnblocksWaiter(t *testing.T) {
	source := NewManualSource()
	if err := source.Init("any.yaml"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	result := make(chan EventOutcome, 1)
	go func() {
		result <- source.WaitForEvent()
	}()

	time.Sleep(20 * time.Millisecond)
	source.Cleanup()

	select {
	case outcome := <-result:
		if outcome != EventError {
			t.Errorf("Expected EventError after Cleanup, got %v", outcome)
		}
	case <-time.After(time.Second):
		t.Fatal("Cleanup did not unblock WaitForEvent")
	}
}

func TestManualSourceSupportsReinit(t *testing.T) {
	source := NewManualSource()
	for i := 0; i < 3; i++ {
		if err := source.Init("any.yaml"); err != nil {
			t.Fatalf("Init cycle %d failed: %v", i, err)
		}
		if err := source.Trigger(); err != nil {
			t.Fatalf("Trigger cycle %d failed: %v", i, err)
		}
		if got := source.WaitForEvent(); got != EventChanged {
			t.Errorf("Cycle %d: expected EventChanged, got %v", i, got)
		}
		source.Cleanup()
	}

	if err := source.Trigger(); err == nil {
		t.Error("Expected Trigger after final Cleanup to fail")
	}
}
