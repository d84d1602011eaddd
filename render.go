package evcap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/peterbourgon/evcap/internal/evutil"
)

// SpanTree renders the span stack and each span's child tree as an indented
// textual tree. Top-level entries are indented by their position in the
// stack, outermost first; children are indented one step below their parent,
// pre-order and depth-first. Each node shows the span name, level, elapsed
// or recorded duration ("active" while un-exited), and inline fields.
//
// The output is diagnostic only, not a compatibility contract.
func (ev *Event) SpanTree() string {
	var tree strings.Builder

	if ev.CurrentSpan != nil {
		fmt.Fprintf(&tree, "Current Span: %s (%s)\n", ev.CurrentSpan.Name, ev.CurrentSpan.Level)
	}

	if len(ev.SpanStack) > 0 {
		tree.WriteString("Span Stack:\n")
		for depth, span := range ev.SpanStack {
			writeSpanNode(&tree, span, depth)
		}
	}

	return tree.String()
}

func writeSpanNode(tree *strings.Builder, span *SpanInfo, depth int) {
	var durstr string
	if span.Active() {
		durstr = " [active]"
	} else {
		durstr = " [" + evutil.HumanizeDuration(span.CurrentDuration()) + "]"
	}

	fmt.Fprintf(tree, "%s├─ %s (%s)%s", strings.Repeat("  ", depth), span.Name, span.Level, durstr)

	if len(span.Fields) > 0 {
		tree.WriteString(" {")
		for _, k := range sortedKeys(span.Fields) {
			fmt.Fprintf(tree, " %s=%s", k, span.Fields[k])
		}
		tree.WriteString(" }")
	}
	tree.WriteByte('\n')

	for _, child := range span.Children {
		writeSpanNode(tree, child, depth+1)
	}
}

// FullContext renders everything known about the event: the header, source
// location, thread/process/correlation context, fields, metadata, and span
// tree, followed by the same rendering for each parent in the causal chain.
func (ev *Event) FullContext() string {
	var out strings.Builder

	fmt.Fprintf(&out, "Event: %s (%s)\n", ev.Data.Message, ev.Data.Level)
	fmt.Fprintf(&out, "Target: %s\n", ev.Data.Target)
	fmt.Fprintf(&out, "Timestamp: %s\n", ev.Data.Timestamp.Format("2006-01-02T15:04:05.000000Z07:00"))

	if ev.Data.File != "" {
		fmt.Fprintf(&out, "Location: %s:%d\n", ev.Data.File, ev.Data.Line)
	}

	if ev.ThreadID != "" {
		fmt.Fprintf(&out, "Thread: %s", ev.ThreadID)
		if ev.ThreadName != "" {
			fmt.Fprintf(&out, " (%s)", ev.ThreadName)
		}
		out.WriteByte('\n')
	}

	if ev.ProcessID != 0 {
		fmt.Fprintf(&out, "Process ID: %d\n", ev.ProcessID)
	}

	if ev.CorrelationID != "" {
		fmt.Fprintf(&out, "Correlation ID: %s\n", ev.CorrelationID)
	}

	if len(ev.Data.Fields) > 0 {
		out.WriteString("Event Fields:\n")
		for _, k := range sortedKeys(ev.Data.Fields) {
			fmt.Fprintf(&out, "  %s: %s\n", k, ev.Data.Fields[k])
		}
	}

	if len(ev.CustomMetadata) > 0 {
		out.WriteString("Metadata:\n")
		for _, k := range sortedKeys(ev.CustomMetadata) {
			fmt.Fprintf(&out, "  %s: %s\n", k, ev.CustomMetadata[k])
		}
	}

	out.WriteByte('\n')
	out.WriteString(ev.SpanTree())

	if ev.Parent != nil {
		out.WriteString("\n--- Parent Event ---\n")
		out.WriteString(ev.Parent.FullContext())
	}

	return out.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
