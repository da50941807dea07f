// watcher.go: Configuration hot-reload watcher with versioning and rollback
//
// This module ties the event sources to the reload pipeline: a background
// goroutine blocks on the event source, and every detected change runs one
// reload transaction (load, validate, diff, commit, record, notify). Manual
// Reload and Rollback calls run the same pipeline on the caller's goroutine,
// serialized against the background goroutine by the same locks.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// ChangeCallback is invoked after every successful commit with the previous
// and the new configuration, in registration order, on the goroutine that
// performed the reload.
type ChangeCallback func(oldCfg, newCfg Config)

// ErrorCallback is invoked when a reload attempt fails, with a
// human-readable message.
type ErrorCallback func(message string)

// Option customizes a Watcher at construction time.
type Option func(*Watcher)

// WithMaxHistory sets how many configuration snapshots are retained for
// rollback (default DefaultMaxHistory).
func WithMaxHistory(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.maxHistory = n
		}
	}
}

// WithLogger sets the logger used for watcher status and error reporting.
func WithLogger(logger Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithEventSource replaces the default fsnotify event source, e.g. with
// NewPollSource for filesystems without native watch support or
// NewManualSource in tests.
func WithEventSource(source EventSource) Option {
	return func(w *Watcher) {
		if source != nil {
			w.source = source
		}
	}
}

// WithLoader replaces the default FileLoader.
func WithLoader(loader Loader) Option {
	return func(w *Watcher) {
		if loader != nil {
			w.loader = loader
		}
	}
}

// Watcher monitors a configuration file for changes and supports hot-reload,
// version history and rollback.
//
// Exactly one snapshot is current at any time; its version equals the newest
// history entry. A failed reload never disturbs the current configuration.
type Watcher struct {
	configPath string
	maxHistory int
	loader     Loader
	source     EventSource
	logger     Logger

	// configMu guards current; readers take the shared mode, committers
	// take the exclusive mode only for the swap and version increment.
	configMu sync.RWMutex
	current  Config

	version atomic.Uint64
	history *snapshotHistory
	events  *changeLog

	// callbacksMu is distinct from configMu and held only while copying
	// the registries; invocation happens outside any lock so a slow or
	// reentrant callback cannot deadlock subsequent reloads.
	callbacksMu     sync.Mutex
	changeCallbacks []ChangeCallback
	errorCallbacks  []ErrorCallback

	// lifecycleMu serializes Start and Stop.
	lifecycleMu sync.Mutex
	running     atomic.Bool
	wg          sync.WaitGroup
}

// New constructs a watcher for the given configuration file and performs the
// initial synchronous load, falling back to defaults if the file is missing
// or unreadable. History is seeded with version 0.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{
		configPath: path,
		maxHistory: DefaultMaxHistory,
		loader:     NewFileLoader(),
		source:     NewFsnotifySource(),
		logger:     DefaultLogger(),
		events:     &changeLog{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "config_watcher", "path", path)
	w.history = newSnapshotHistory(w.maxHistory)

	cfg, err := w.loader.Load(path)
	if err != nil {
		w.logger.Warn("Initial configuration load failed, starting from defaults", "error", err)
		cfg = w.loader.Defaults()
	}
	w.current = cfg.Clone()
	w.history.append(Snapshot{
		Version:   0,
		Timestamp: timecache.CachedTime(),
		Config:    cfg.Clone(),
	})
	return w
}

// Start begins watching the configuration file for changes.
//
// It fails with an already_running error if the watcher is running, and with
// the event source's error if the underlying watch cannot be established; in
// the latter case the watcher remains stopped and Start may be retried after
// remediation.
func (w *Watcher) Start() error {
	w.lifecycleMu.Lock()
	defer w.lifecycleMu.Unlock()

	if w.running.Load() {
		return NewAlreadyRunningError(w.configPath)
	}

	if err := w.source.Init(w.configPath); err != nil {
		w.logger.Error("Failed to establish configuration watch", "error", err)
		return err
	}

	w.running.Store(true)
	w.wg.Add(1)
	go w.watchLoop()

	w.logger.Info("Configuration watcher started")
	return nil
}

// Stop stops watching the configuration file. It is idempotent: stopping an
// already-stopped watcher is a no-op. Stop blocks until the watch goroutine
// has exited.
func (w *Watcher) Stop() {
	w.lifecycleMu.Lock()
	defer w.lifecycleMu.Unlock()

	if !w.running.Load() {
		return
	}

	w.running.Store(false)
	w.source.Cleanup()
	w.wg.Wait()

	w.logger.Info("Configuration watcher stopped")
}

// IsRunning reports whether the watcher has been started and not yet
// stopped. It keeps reporting true after an event source failure until
// Stop() acknowledges the degraded state.
func (w *Watcher) IsRunning() bool {
	return w.running.Load()
}

// OnChange registers a callback invoked after every successful commit with
// the previous and the new configuration. Multiple callbacks run in
// registration order.
func (w *Watcher) OnChange(callback ChangeCallback) {
	if callback == nil {
		return
	}
	w.callbacksMu.Lock()
	defer w.callbacksMu.Unlock()
	w.changeCallbacks = append(w.changeCallbacks, callback)
}

// OnError registers a callback invoked when a reload attempt fails.
func (w *Watcher) OnError(callback ErrorCallback) {
	if callback == nil {
		return
	}
	w.callbacksMu.Lock()
	defer w.callbacksMu.Unlock()
	w.errorCallbacks = append(w.errorCallbacks, callback)
}

// Reload manually triggers a reload with semantics identical to an
// automatic, event-driven reload, and additionally returns the outcome.
func (w *Watcher) Reload() error {
	return w.doReload()
}

// Current returns a copy of the current configuration. Many concurrent
// readers are permitted; a reader never observes a partially-committed
// configuration.
func (w *Watcher) Current() Config {
	w.configMu.RLock()
	defer w.configMu.RUnlock()
	return w.current.Clone()
}

// Version returns the current configuration version. The counter increases
// by exactly one per successful commit and never decreases; rollback is a
// commit, not a decrement.
func (w *Watcher) Version() uint64 {
	return w.version.Load()
}

// History returns up to count retained snapshots, newest first; count 0
// returns all.
func (w *Watcher) History(count int) []Snapshot {
	return w.history.list(count)
}

// RecentEvents returns up to count change events, newest first; count 0
// returns all.
func (w *Watcher) RecentEvents(count int) []ChangeEvent {
	return w.events.recent(count)
}

// ConfigPath returns the path of the watched configuration file.
func (w *Watcher) ConfigPath() string {
	return w.configPath
}

// Rollback restores the configuration stored at targetVersion as a new
// commit: the version counter is incremented (an old version number is never
// reused) and a change event and callback notification are produced exactly
// as for a normal reload. It fails with a rollback_failed error when the
// version is no longer retained in history.
func (w *Watcher) Rollback(targetVersion uint64) error {
	snap, ok := w.history.find(targetVersion)
	if !ok {
		w.logger.Warn("Rollback target not found in history", "target_version", targetVersion)
		return NewRollbackFailedError(targetVersion)
	}

	oldCfg, newCfg, event := w.commit(snap.Config)
	w.logger.Info("Configuration rolled back",
		"target_version", targetVersion,
		"new_version", event.Version)
	w.notifyChange(oldCfg, newCfg)
	return nil
}

// watchLoop runs on the dedicated watch goroutine: block on the event
// source, settle, reload, repeat, until stopped or the source fails.
func (w *Watcher) watchLoop() {
	defer w.wg.Done()
	defer withStackRecover(w.logger)()

	for {
		outcome := w.source.WaitForEvent()
		if !w.running.Load() {
			return
		}

		switch outcome {
		case EventChanged:
			// Coalesce rapid successive writes into one reload.
			time.Sleep(settleDelay)
			if err := w.doReload(); err != nil {
				// Already recorded and delivered through error callbacks;
				// the error never crosses the goroutine boundary.
				w.logger.Warn("Automatic configuration reload failed", "error", err)
			}
		case EventError:
			// Degraded state: automatic reload is gone but the watcher
			// stays formally running until Stop() so the owner decides
			// when to tear down or restart.
			w.logger.Error("Configuration event source failed; automatic reload disabled until restart")
			return
		case EventTimeout:
			// Re-check the running flag and wait again.
		}
	}
}

// doReload executes one reload attempt as a single logical transaction.
// Steps 1-3 (load, validate, diff) never mutate watcher state; the commit is
// the sole mutation point and runs under the exclusive configuration lock.
func (w *Watcher) doReload() error {
	candidate, err := w.loader.Load(w.configPath)
	if err != nil {
		w.recordFailure(err.Error())
		w.notifyError(err.Error())
		return NewReloadFailedError(w.configPath, err)
	}

	if err := w.loader.Validate(candidate); err != nil {
		// Nothing was committed, so a validation failure is a no-op on
		// state, not a rollback.
		w.recordFailure(err.Error())
		w.notifyError("Validation failed: " + err.Error())
		return NewValidationFailedError(w.configPath, err)
	}

	oldCfg, newCfg, event := w.commit(candidate)

	if nonReloadable := nonHotReloadable(event.ChangedFields); len(nonReloadable) > 0 {
		w.logger.Warn("Changed fields require a restart to take full effect",
			"fields", nonReloadable)
	}

	w.logger.Info("Configuration reloaded",
		"version", event.Version,
		"changed_fields", len(event.ChangedFields))
	w.notifyChange(oldCfg, newCfg)
	return nil
}

// commit atomically replaces the current configuration, increments the
// version counter, appends a history snapshot, and records the success
// event. Holding the exclusive configuration lock across the history and
// event appends preserves the invariants that the current version always
// equals the newest history entry and that the event log stays in version
// order even when manual and automatic reloads race.
func (w *Watcher) commit(candidate Config) (oldCfg, newCfg Config, event ChangeEvent) {
	w.configMu.Lock()
	defer w.configMu.Unlock()

	oldCfg = w.current.Clone()
	newCfg = candidate.Clone()
	changed := DiffConfigs(w.current, candidate)
	w.current = candidate.Clone()
	version := w.version.Add(1)
	now := timecache.CachedTime()
	w.history.append(Snapshot{
		Version:   version,
		Timestamp: now,
		Config:    candidate.Clone(),
	})

	event = ChangeEvent{
		Timestamp:     now,
		Version:       version,
		ChangedFields: changed,
		Success:       true,
	}
	w.events.append(event)
	return oldCfg, newCfg, event
}

// recordFailure appends a failed change event carrying the version that
// remained in effect.
func (w *Watcher) recordFailure(message string) {
	w.events.append(ChangeEvent{
		Timestamp:    timecache.CachedTime(),
		Version:      w.version.Load(),
		Success:      false,
		ErrorMessage: message,
	})
}

// notifyChange invokes all registered change callbacks in registration
// order. The registry is copied under its own lock and invoked outside any
// lock; panics are recovered per callback.
func (w *Watcher) notifyChange(oldCfg, newCfg Config) {
	w.callbacksMu.Lock()
	callbacks := make([]ChangeCallback, len(w.changeCallbacks))
	copy(callbacks, w.changeCallbacks)
	w.callbacksMu.Unlock()

	for _, callback := range callbacks {
		func() {
			defer withStackRecover(w.logger)()
			callback(oldCfg, newCfg)
		}()
	}
}

// notifyError invokes all registered error callbacks in registration order,
// with the same copy-then-invoke discipline as notifyChange.
func (w *Watcher) notifyError(message string) {
	w.callbacksMu.Lock()
	callbacks := make([]ErrorCallback, len(w.errorCallbacks))
	copy(callbacks, w.errorCallbacks)
	w.callbacksMu.Unlock()

	for _, callback := range callbacks {
		func() {
			defer withStackRecover(w.logger)()
			callback(message)
		}()
	}
}

// nonHotReloadable filters a changed-field list down to the fields that
// cannot take full effect without a restart.
func nonHotReloadable(fields []string) []string {
	var result []string
	for _, field := range fields {
		if !IsHotReloadable(field) {
			result = append(result, field)
		}
	}
	return result
}
