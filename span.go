package evcap

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"
)

// SpanInfo describes one named interval of execution: when it was entered,
// when (if ever) it was exited, the fields attached to it, and the ordered
// child spans opened beneath it.
//
// A span is created on entry and mutated via AddField and AddChild only while
// active, by a single owner. Exit finalizes it exactly once. After a span has
// been captured into an event it must be treated as immutable.
type SpanInfo struct {
	ID         uint64            `json:"id"`
	Name       string            `json:"name"`
	Target     string            `json:"target"`
	Level      Level             `json:"level"`
	File       string            `json:"file,omitempty"`
	Line       int               `json:"line,omitempty"`
	ModulePath string            `json:"module_path,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	EnteredAt  time.Time         `json:"entered_at"`
	ExitedAt   *time.Time        `json:"exited_at,omitempty"`
	Duration   *durationString   `json:"duration,omitempty"`
	Children   []*SpanInfo       `json:"children,omitempty"`
}

var spanSeq uint64

// NewSpan creates and enters a new span with a process-unique ID.
func NewSpan(name, target string, level Level) *SpanInfo {
	return &SpanInfo{
		ID:        atomic.AddUint64(&spanSeq, 1),
		Name:      name,
		Target:    target,
		Level:     level,
		EnteredAt: time.Now().UTC(),
	}
}

// AddField attaches a stringified field value to the span.
func (s *SpanInfo) AddField(key, value string) {
	if s.Fields == nil {
		s.Fields = map[string]string{}
	}
	s.Fields[key] = value
}

// AddChild appends a child span.
func (s *SpanInfo) AddChild(child *SpanInfo) {
	s.Children = append(s.Children, child)
}

// Exit finalizes the span, recording the exit time and the duration between
// entry and exit. Subsequent calls are no-ops.
func (s *SpanInfo) Exit() {
	if s.ExitedAt != nil {
		return
	}

	now := time.Now().UTC()
	s.ExitedAt = &now

	d := durationString(now.Sub(s.EnteredAt))
	s.Duration = &d
}

// Active returns true until Exit is called.
func (s *SpanInfo) Active() bool {
	return s.ExitedAt == nil
}

// CurrentDuration returns the recorded duration for an exited span, or the
// time elapsed since entry for an active span.
func (s *SpanInfo) CurrentDuration() time.Duration {
	if s.Duration != nil {
		return time.Duration(*s.Duration)
	}
	return time.Since(s.EnteredAt)
}

//
//
//

// durationString is a time.Duration which JSON marshals as a string.
type durationString time.Duration

// MarshalJSON implements json.Marshaler.
func (d *durationString) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(*d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *durationString) UnmarshalJSON(data []byte) error {
	if dur, err := time.ParseDuration(strings.Trim(string(data), `"`)); err == nil {
		*d = durationString(dur)
		return nil
	}
	return json.Unmarshal(data, (*time.Duration)(d))
}
