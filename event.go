package evcap

import (
	"strings"
	"time"
)

// EventData is the log-like payload of a captured event: the message, the
// severity, the logical source (target), the capture-site location, and the
// stringified field values.
//
// EventData may be extended via AddField only while the enclosing event is
// being assembled. Once the event is published, it is immutable.
type EventData struct {
	Message    string            `json:"message"`
	Level      Level             `json:"level"`
	Target     string            `json:"target"`
	File       string            `json:"file,omitempty"`
	Line       int               `json:"line,omitempty"`
	ModulePath string            `json:"module_path,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewEventData returns event data with the capture timestamp set to now.
func NewEventData(message string, level Level, target string) EventData {
	return EventData{
		Message:   message,
		Level:     level,
		Target:    target,
		Timestamp: time.Now().UTC(),
	}
}

// AddField attaches a stringified field value to the event data.
func (d *EventData) AddField(key, value string) {
	if d.Fields == nil {
		d.Fields = map[string]string{}
	}
	d.Fields[key] = value
}

//
//
//

// Event is one captured record: the event data, a snapshot of the span stack
// active when it fired, thread and process context, an opaque correlation ID,
// free-form metadata, and an optional link to a parent event.
//
// Events are retained for an indeterminate length of time and shared between
// the store, snapshots, and every subscriber, so once published they must be
// treated as immutable. The parent link always points at an event captured
// strictly earlier, so parent chains are acyclic by construction; the link is
// deliberately excluded from serialization.
type Event struct {
	Parent         *Event            `json:"-"`
	Data           EventData         `json:"event_data"`
	SpanStack      []*SpanInfo       `json:"span_stack,omitempty"`
	CurrentSpan    *SpanInfo         `json:"current_span,omitempty"`
	ThreadID       string            `json:"thread_id,omitempty"`
	ThreadName     string            `json:"thread_name,omitempty"`
	ProcessID      int               `json:"process_id,omitempty"`
	CorrelationID  string            `json:"correlation_id,omitempty"`
	CustomMetadata map[string]string `json:"custom_metadata,omitempty"`
}

// NewEvent wraps the provided data in an event with no context attached.
func NewEvent(data EventData) *Event {
	return &Event{
		Data: data,
	}
}

// WithParent links the event to an already-captured parent event.
func (ev *Event) WithParent(parent *Event) *Event {
	ev.Parent = parent
	return ev
}

// WithSpanStack attaches the stack of spans active when the event fired,
// ordered outermost first.
func (ev *Event) WithSpanStack(spans []*SpanInfo) *Event {
	ev.SpanStack = spans
	return ev
}

// WithCurrentSpan attaches the innermost active span, which may differ from
// the top of the span stack.
func (ev *Event) WithCurrentSpan(span *SpanInfo) *Event {
	ev.CurrentSpan = span
	return ev
}

// WithThread attaches the capturing thread of execution.
func (ev *Event) WithThread(id, name string) *Event {
	ev.ThreadID = id
	ev.ThreadName = name
	return ev
}

// WithProcessID attaches the capturing process ID.
func (ev *Event) WithProcessID(pid int) *Event {
	ev.ProcessID = pid
	return ev
}

// WithCorrelationID attaches an opaque string correlating related events.
func (ev *Event) WithCorrelationID(id string) *Event {
	ev.CorrelationID = id
	return ev
}

// AddMetadata attaches a custom metadata value. Valid only before publish.
func (ev *Event) AddMetadata(key, value string) {
	if ev.CustomMetadata == nil {
		ev.CustomMetadata = map[string]string{}
	}
	ev.CustomMetadata[key] = value
}

// hasSpanContaining reports whether any span in the stack, or the current
// span, has a name containing the substring. Child spans are not considered.
func (ev *Event) hasSpanContaining(substr string) bool {
	for _, s := range ev.SpanStack {
		if strings.Contains(s.Name, substr) {
			return true
		}
	}
	return ev.CurrentSpan != nil && strings.Contains(ev.CurrentSpan.Name, substr)
}
