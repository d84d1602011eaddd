package evcap

import (
	"fmt"
	"strings"
)

// Filter is a set of conditions applied to an individual event, which will
// either be allowed (pass) or rejected (fail). Conditions are conjunctive,
// and a condition that isn't set is vacuously true, so the zero filter
// allows every event.
type Filter struct {
	Level         *Level `json:"level,omitempty"`          // exact match
	Target        string `json:"target,omitempty"`         // substring match
	Message       string `json:"message,omitempty"`        // substring match
	Span          string `json:"span,omitempty"`           // substring match against stack and current span names
	Thread        string `json:"thread,omitempty"`         // exact match
	CorrelationID string `json:"correlation_id,omitempty"` // exact match
}

// Allow returns true if the provided event satisfies all of the conditions
// in the filter.
func (f Filter) Allow(ev *Event) bool {
	if f.Level != nil {
		if ev.Data.Level != *f.Level {
			return false
		}
	}

	if f.Target != "" {
		if !strings.Contains(ev.Data.Target, f.Target) {
			return false
		}
	}

	if f.Message != "" {
		if !strings.Contains(ev.Data.Message, f.Message) {
			return false
		}
	}

	if f.Span != "" {
		if !ev.hasSpanContaining(f.Span) {
			return false
		}
	}

	if f.Thread != "" {
		if ev.ThreadID != f.Thread {
			return false
		}
	}

	if f.CorrelationID != "" {
		if ev.CorrelationID != f.CorrelationID {
			return false
		}
	}

	return true
}

// String returns an operator-readable representation of the filter.
func (f Filter) String() string {
	var elems []string

	if f.Level != nil {
		elems = append(elems, fmt.Sprintf("Level=%s", *f.Level))
	}

	if f.Target != "" {
		elems = append(elems, fmt.Sprintf("Target~'%s'", f.Target))
	}

	if f.Message != "" {
		elems = append(elems, fmt.Sprintf("Message~'%s'", f.Message))
	}

	if f.Span != "" {
		elems = append(elems, fmt.Sprintf("Span~'%s'", f.Span))
	}

	if f.Thread != "" {
		elems = append(elems, fmt.Sprintf("Thread=%s", f.Thread))
	}

	if f.CorrelationID != "" {
		elems = append(elems, fmt.Sprintf("CorrelationID=%s", f.CorrelationID))
	}

	if len(elems) <= 0 {
		return "(allow all)"
	}

	return strings.Join(elems, " ")
}
