package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/peterbourgon/evcap"
)

func writeJSON(w io.Writer, format string, v any) error {
	enc := json.NewEncoder(w)
	if format == "prettyjson" {
		enc.SetIndent("", "    ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	return nil
}

func eventLine(ev *evcap.Event) string {
	return fmt.Sprintf("%s %-5s %s %s",
		ev.Data.Timestamp.Format("15:04:05.000"),
		ev.Data.Level,
		ev.Data.Target,
		ev.Data.Message,
	)
}
