package evcap

import (
	"errors"
	"sync"
)

// ErrNotInitialized is returned by global operations invoked before
// InitGlobal. It is a recoverable condition, never a fatal one.
var ErrNotInitialized = errors.New("global event manager not initialized")

var (
	globalMtx     sync.RWMutex
	globalManager *Manager
)

// InitGlobal creates and installs the process-wide manager, and returns it.
// Initialization is first-writer-wins: if a global manager is already
// installed, the call is ignored and the existing manager is returned, so
// live subscriptions are never orphaned by a late init.
func InitGlobal(cfg ManagerConfig) *Manager {
	globalMtx.Lock()
	defer globalMtx.Unlock()

	if globalManager == nil {
		globalManager = NewManager(cfg)
	}

	return globalManager
}

// ResetGlobal clears the process-wide manager slot, so that a subsequent
// InitGlobal installs a fresh manager. Intended for tests; production code
// should initialize exactly once at process start.
func ResetGlobal() {
	globalMtx.Lock()
	defer globalMtx.Unlock()

	globalManager = nil
}

// Global returns the process-wide manager, or ErrNotInitialized.
func Global() (*Manager, error) {
	globalMtx.RLock()
	defer globalMtx.RUnlock()

	if globalManager == nil {
		return nil, ErrNotInitialized
	}

	return globalManager, nil
}

// Events returns the process-wide manager's publish/subscribe target, or
// ErrNotInitialized.
func Events() (*Target[Event], error) {
	m, err := Global()
	if err != nil {
		return nil, err
	}
	return m.Events(), nil
}

// Emit stores the event in the process-wide manager and publishes it to all
// live subscribers. Before InitGlobal, it reports ErrNotInitialized and the
// event is dropped.
func Emit(ev *Event) error {
	m, err := Global()
	if err != nil {
		return err
	}
	m.Emit(ev)
	return nil
}

// GlobalEvents returns every event stored in the process-wide manager,
// newest first. Before InitGlobal, it degrades to an empty result.
func GlobalEvents() []*Event {
	m, err := Global()
	if err != nil {
		return nil
	}
	return m.GetRecent(m.Len())
}

// GlobalEventCount returns the number of events stored in the process-wide
// manager, or zero before InitGlobal.
func GlobalEventCount() int {
	m, err := Global()
	if err != nil {
		return 0
	}
	return m.Len()
}

// ClearGlobalEvents empties the process-wide manager's event buffer.
func ClearGlobalEvents() error {
	m, err := Global()
	if err != nil {
		return err
	}
	m.Clear()
	return nil
}

// EventSummary renders the process-wide manager's per-level event counts.
// Before InitGlobal, it degrades to a fixed placeholder.
func EventSummary() string {
	m, err := Global()
	if err != nil {
		return "No events captured"
	}
	return m.Summary()
}

// ImportMergeFile reads and decodes a snapshot file, then replays every
// stored event into the process-wide manager via Push. Imported events are
// historical, not live: they are stored but never redelivered to live
// subscribers. Returns the decoded snapshot and the number of merged events.
func ImportMergeFile(path string) (ExportData, int, error) {
	m, err := Global()
	if err != nil {
		return ExportData{}, 0, err
	}

	ed, err := readSnapshotFile(path)
	if err != nil {
		return ExportData{}, 0, err
	}

	for _, ev := range ed.Events {
		m.Push(ev)
	}

	return ed, len(ed.Events), nil
}
