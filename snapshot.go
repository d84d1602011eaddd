package evcap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// FormatVersion identifies the snapshot document format produced by this
// package. Decoders accept any snapshot with the same major version.
const FormatVersion = "1.0"

// ErrInvalidSnapshot is wrapped by every decode failure: content that is
// readable as bytes but is not a valid snapshot document. I/O failures are
// reported separately and never wrap this error.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// ExportMetadata summarizes a snapshot: the format version, when it was
// exported, how many events it holds, per-level counts for levels with at
// least one event, and an optional free-form description.
type ExportMetadata struct {
	FormatVersion   string         `json:"format_version"`
	ExportTimestamp time.Time      `json:"export_timestamp"`
	TotalEvents     int            `json:"total_events"`
	LevelCounts     map[string]int `json:"level_counts"`
	Description     string         `json:"description,omitempty"`
}

// ExportData is the complete content of a snapshot: summary metadata plus
// the event sequence. Events are stored oldest-first, so that replaying them
// through Push in stored order reconstructs the original recency order.
type ExportData struct {
	Metadata ExportMetadata `json:"metadata"`
	Events   []*Event       `json:"events"`
}

// NewExportData computes metadata over the given events, captured in the
// order provided.
func NewExportData(events []*Event, description string) ExportData {
	counts := map[string]int{}
	for _, ev := range events {
		counts[ev.Data.Level.String()]++
	}

	return ExportData{
		Metadata: ExportMetadata{
			FormatVersion:   FormatVersion,
			ExportTimestamp: time.Now().UTC(),
			TotalEvents:     len(events),
			LevelCounts:     counts,
			Description:     description,
		},
		Events: events,
	}
}

// Encode serializes the export data as a single self-describing JSON
// document. The name of the on-disk format predates the encoding: snapshots
// are structured text, not a fixed binary layout.
func (ed ExportData) Encode() ([]byte, error) {
	data, err := json.Marshal(ed)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeExportData parses and validates a snapshot document. Unknown
// metadata fields are ignored for forward compatibility, but a missing or
// malformed required event field is an error wrapping ErrInvalidSnapshot,
// never a silent truncation.
func DecodeExportData(data []byte) (ExportData, error) {
	var ed ExportData
	if err := json.Unmarshal(data, &ed); err != nil {
		return ExportData{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	if err := ed.validate(); err != nil {
		return ExportData{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	return ed, nil
}

func (ed ExportData) validate() error {
	if ed.Metadata.FormatVersion == "" {
		return fmt.Errorf("missing format version")
	}

	if major := strings.SplitN(ed.Metadata.FormatVersion, ".", 2)[0]; major != strings.SplitN(FormatVersion, ".", 2)[0] {
		return fmt.Errorf("unsupported format version %q", ed.Metadata.FormatVersion)
	}

	for i, ev := range ed.Events {
		if ev == nil {
			return fmt.Errorf("event %d: empty", i)
		}
		if err := validateEvent(ev); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}

	return nil
}

func validateEvent(ev *Event) error {
	if !ev.Data.Level.valid() {
		return fmt.Errorf("missing level")
	}
	if ev.Data.Timestamp.IsZero() {
		return fmt.Errorf("missing timestamp")
	}
	for _, s := range ev.SpanStack {
		if err := validateSpan(s); err != nil {
			return err
		}
	}
	if ev.CurrentSpan != nil {
		if err := validateSpan(ev.CurrentSpan); err != nil {
			return err
		}
	}
	return nil
}

func validateSpan(s *SpanInfo) error {
	if s == nil {
		return fmt.Errorf("span: empty")
	}
	if !s.Level.valid() {
		return fmt.Errorf("span %q: missing level", s.Name)
	}
	if s.EnteredAt.IsZero() {
		return fmt.Errorf("span %q: missing entry time", s.Name)
	}
	for _, c := range s.Children {
		if err := validateSpan(c); err != nil {
			return err
		}
	}
	return nil
}

//
//
//

// ExportData snapshots the manager's current events, oldest-first, with the
// given description.
func (m *Manager) ExportData(description string) ExportData {
	return NewExportData(reverseEvents(m.GetRecent(m.Len())), description)
}

// ExportBytes encodes a snapshot of the manager's current events.
func (m *Manager) ExportBytes(description string) ([]byte, error) {
	return m.ExportData(description).Encode()
}

// ExportFile writes a snapshot of the manager's current events to the given
// path, returning how many events were exported. The write is not atomic: a
// failed write may leave a partial file.
func (m *Manager) ExportFile(path, description string) (int, error) {
	return exportFile(path, m.ExportData(description))
}

// ExportFilteredFile writes a snapshot of the events allowed by the filter
// to the given path, returning how many events were exported.
func (m *Manager) ExportFilteredFile(path string, f Filter, description string) (int, error) {
	return exportFile(path, NewExportData(reverseEvents(m.Search(f)), description))
}

func exportFile(path string, ed ExportData) (int, error) {
	data, err := ed.Encode()
	if err != nil {
		return 0, err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write snapshot file: %w", err)
	}

	return ed.Metadata.TotalEvents, nil
}

// ImportFile reads and decodes a snapshot file, and builds a fresh manager
// with the default capacity by replaying the stored events through Push, so
// eviction re-applies if the snapshot holds more events than the capacity.
// File errors and decode errors are reported distinctly: only the latter
// wrap ErrInvalidSnapshot.
func ImportFile(path string) (*Manager, error) {
	ed, err := readSnapshotFile(path)
	if err != nil {
		return nil, err
	}

	m := NewDefaultManager()
	for _, ev := range ed.Events {
		m.Push(ev)
	}

	return m, nil
}

func readSnapshotFile(path string) (ExportData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExportData{}, fmt.Errorf("read snapshot file: %w", err)
	}

	return DecodeExportData(data)
}

// reverseEvents returns a new slice with the events in opposite order. Query
// results are newest-first; snapshots store oldest-first.
func reverseEvents(events []*Event) []*Event {
	res := make([]*Event, len(events))
	for i, ev := range events {
		res[len(events)-1-i] = ev
	}
	return res
}
