package evcap

import (
	"fmt"
	"strings"

	"github.com/peterbourgon/evcap/internal/evdebug"
	"github.com/peterbourgon/evcap/internal/evring"
)

// Manager retains a bounded, most-recent-first history of published events,
// and owns the target that fans those events out to live subscribers. It is
// the single publish point the rest of the system uses.
//
// Managers are safe for concurrent use. No manager operation can fail: both
// mutations and queries are pure in-memory work.
type Manager struct {
	events *evring.RingBuffer[*Event]
	target *Target[Event]
}

// ManagerConfig defines the configuration options for a manager.
type ManagerConfig struct {
	// MaxEvents is how many events the manager will keep, newest-first. When
	// the buffer is full, each new event evicts the oldest one. The default
	// value is DefaultMaxEvents.
	MaxEvents int
}

// DefaultMaxEvents is the event capacity of a manager which doesn't specify
// its own.
const DefaultMaxEvents = 12000

func (cfg *ManagerConfig) sanitize() {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = DefaultMaxEvents
	}
}

// NewManager returns a new manager with the given configuration.
func NewManager(cfg ManagerConfig) *Manager {
	cfg.sanitize()
	return &Manager{
		events: evring.NewRingBuffer[*Event](cfg.MaxEvents),
		target: NewTarget[Event](),
	}
}

// NewDefaultManager returns a new manager with the default configuration.
func NewDefaultManager() *Manager {
	return NewManager(ManagerConfig{})
}

// Emit stores the event in the bounded buffer and publishes it to every
// live subscriber and stream on the manager's target.
func (m *Manager) Emit(ev *Event) {
	if _, dropped := m.events.Add(ev); dropped {
		evdebug.EventFlow.Evicted.Add(1)
	}
	evdebug.EventFlow.Emitted.Add(1)
	m.target.Emit(ev)
}

// Push stores the event in the bounded buffer without publishing it. This is
// the replay path for imported snapshots: historical events are stored, not
// redelivered to live subscribers.
func (m *Manager) Push(ev *Event) {
	if _, dropped := m.events.Add(ev); dropped {
		evdebug.EventFlow.Evicted.Add(1)
	}
	evdebug.EventFlow.Pushed.Add(1)
}

// Events returns the manager's publish/subscribe target.
func (m *Manager) Events() *Target[Event] {
	return m.target
}

// Close disposes the manager's target, terminating all streams. The stored
// event history remains queryable.
func (m *Manager) Close() {
	m.target.Close()
}

//
//
//

// Search returns every stored event allowed by the filter, newest first.
// The result is a snapshot: it never aliases the internal buffer.
func (m *Manager) Search(f Filter) []*Event {
	var res []*Event
	m.events.Walk(func(ev *Event) error {
		if f.Allow(ev) {
			res = append(res, ev)
		}
		return nil
	})
	return res
}

// GetByLevel returns stored events with exactly the given level, newest
// first.
func (m *Manager) GetByLevel(level Level) []*Event {
	return m.Search(Filter{Level: &level})
}

// GetByTarget returns stored events whose target contains the substring,
// newest first.
func (m *Manager) GetByTarget(substr string) []*Event {
	return m.Search(Filter{Target: substr})
}

// GetBySpan returns stored events where any span in the stack, or the
// current span, has a name containing the substring, newest first.
func (m *Manager) GetBySpan(substr string) []*Event {
	return m.Search(Filter{Span: substr})
}

// GetByThread returns stored events captured on the given thread, newest
// first.
func (m *Manager) GetByThread(threadID string) []*Event {
	return m.Search(Filter{Thread: threadID})
}

// GetByCorrelationID returns stored events carrying the given correlation
// ID, newest first.
func (m *Manager) GetByCorrelationID(id string) []*Event {
	return m.Search(Filter{CorrelationID: id})
}

// GetRecent returns the n most recent stored events, newest first.
func (m *Manager) GetRecent(n int) []*Event {
	if n <= 0 {
		return nil
	}
	var res []*Event
	m.events.Walk(func(ev *Event) error {
		if len(res) >= n {
			return errWalkDone
		}
		res = append(res, ev)
		return nil
	})
	return res
}

var errWalkDone = fmt.Errorf("done")

// Len returns the number of stored events.
func (m *Manager) Len() int {
	return m.events.Len()
}

// IsEmpty returns true if no events are stored.
func (m *Manager) IsEmpty() bool {
	return m.events.Len() == 0
}

// Clear empties the event buffer. Already-issued subscriptions, and
// snapshots taken before the clear, are unaffected.
func (m *Manager) Clear() {
	m.events.Clear()
}

// Resize changes the event capacity, dropping the oldest events as needed,
// and returns how many were dropped.
func (m *Manager) Resize(maxEvents int) (dropped int) {
	return len(m.events.Resize(maxEvents))
}

// LevelCounts returns how many stored events exist per level label, for
// levels with at least one event.
func (m *Manager) LevelCounts() map[string]int {
	counts := map[string]int{}
	m.events.Walk(func(ev *Event) error {
		counts[ev.Data.Level.String()]++
		return nil
	})
	return counts
}

// Summary renders the total event count and the per-level counts, most
// severe level first, skipping levels with no events.
func (m *Manager) Summary() string {
	var (
		counts = m.LevelCounts()
		total  = m.Len()
	)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Event Summary: %d total events\n", total)
	for _, level := range Levels() {
		if n := counts[level.String()]; n > 0 {
			fmt.Fprintf(&sb, "  %s: %d\n", level, n)
		}
	}
	return sb.String()
}
