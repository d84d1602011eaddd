package evcap_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterbourgon/evcap"
)

// The global tests share the process-wide manager slot, so they are not
// parallel and each one resets the slot on entry and exit.

func TestGlobalUninitialized(t *testing.T) {
	evcap.ResetGlobal()
	defer evcap.ResetGlobal()

	_, err := evcap.Global()
	AssertErrorIs(t, err, evcap.ErrNotInitialized)

	_, err = evcap.Events()
	AssertErrorIs(t, err, evcap.ErrNotInitialized)

	err = evcap.Emit(newTestEvent("dropped", evcap.LevelInfo, "test"))
	AssertErrorIs(t, err, evcap.ErrNotInitialized)

	AssertErrorIs(t, evcap.ClearGlobalEvents(), evcap.ErrNotInitialized)

	// Read-only accessors degrade instead of failing.
	AssertEqual(t, 0, len(evcap.GlobalEvents()))
	AssertEqual(t, 0, evcap.GlobalEventCount())
	AssertEqual(t, "No events captured", evcap.EventSummary())
}

func TestGlobalFirstWriterWins(t *testing.T) {
	evcap.ResetGlobal()
	defer evcap.ResetGlobal()

	first := evcap.InitGlobal(evcap.ManagerConfig{MaxEvents: 5})

	var received int
	target, err := evcap.Events()
	AssertNoError(t, err)
	target.Subscribe(func(*evcap.Event) { received++ })

	// A second init is ignored: the original manager, and its live
	// subscriptions, stay in place.
	second := evcap.InitGlobal(evcap.ManagerConfig{MaxEvents: 999})
	if first != second {
		t.Fatal("second init must return the already-installed manager")
	}

	AssertNoError(t, evcap.Emit(newTestEvent("x", evcap.LevelInfo, "test")))
	AssertEqual(t, 1, received)
	AssertEqual(t, 1, evcap.GlobalEventCount())
}

func TestGlobalLifecycle(t *testing.T) {
	evcap.ResetGlobal()
	defer evcap.ResetGlobal()

	evcap.InitGlobal(evcap.ManagerConfig{MaxEvents: 10})

	AssertNoError(t, evcap.Emit(newTestEvent("one", evcap.LevelInfo, "test")))
	AssertNoError(t, evcap.Emit(newTestEvent("two", evcap.LevelError, "test")))

	events := evcap.GlobalEvents()
	AssertEqual(t, 2, len(events))
	AssertEqual(t, "two", events[0].Data.Message)
	AssertEqual(t, "one", events[1].Data.Message)

	summary := evcap.EventSummary()
	AssertEqual(t, true, strings.Contains(summary, "2 total events"))
	AssertEqual(t, true, strings.Contains(summary, "ERROR: 1"))

	AssertNoError(t, evcap.ClearGlobalEvents())
	AssertEqual(t, 0, evcap.GlobalEventCount())
}

func TestGlobalImportMerge(t *testing.T) {
	evcap.ResetGlobal()
	defer evcap.ResetGlobal()

	// Build a snapshot from a throwaway manager.
	src := evcap.NewManager(evcap.ManagerConfig{MaxEvents: 10})
	src.Emit(newTestEvent("old one", evcap.LevelInfo, "svc"))
	src.Emit(newTestEvent("old two", evcap.LevelWarn, "svc"))

	path := filepath.Join(t.TempDir(), "merge.bin")
	_, err := src.ExportFile(path, "merge source")
	AssertNoError(t, err)

	m := evcap.InitGlobal(evcap.ManagerConfig{MaxEvents: 10})
	m.Emit(newTestEvent("live", evcap.LevelInfo, "svc"))

	var redelivered int
	m.Events().Subscribe(func(*evcap.Event) { redelivered++ })

	ed, count, err := evcap.ImportMergeFile(path)
	AssertNoError(t, err)
	AssertEqual(t, 2, count)
	AssertEqual(t, 2, ed.Metadata.TotalEvents)

	// Imported events are stored but never redelivered to subscribers.
	AssertEqual(t, 0, redelivered)
	AssertEqual(t, 3, m.Len())

	events := m.GetRecent(10)
	AssertEqual(t, "old two", events[0].Data.Message)
	AssertEqual(t, "old one", events[1].Data.Message)
	AssertEqual(t, "live", events[2].Data.Message)
}

func TestGlobalImportMergeUninitialized(t *testing.T) {
	evcap.ResetGlobal()
	defer evcap.ResetGlobal()

	_, _, err := evcap.ImportMergeFile(filepath.Join(t.TempDir(), "whatever.bin"))
	AssertErrorIs(t, err, evcap.ErrNotInitialized)
}
