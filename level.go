package evcap

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is the severity of an event or span. Levels are ordered, with
// LevelError the most severe and LevelTrace the least severe.
type Level int

const (
	LevelTrace Level = iota + 1
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// Levels returns every valid level, most severe first.
func Levels() []Level {
	return []Level{LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace}
}

// ParseLevel converts a level label like "INFO" to the corresponding level.
// Labels are matched case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError, nil
	case "WARN":
		return LevelWarn, nil
	case "INFO":
		return LevelInfo, nil
	case "DEBUG":
		return LevelDebug, nil
	case "TRACE":
		return LevelTrace, nil
	default:
		return 0, fmt.Errorf("invalid level %q", s)
	}
}

// String returns the uppercase label for the level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

func (l Level) valid() bool {
	return l >= LevelTrace && l <= LevelError
}

// MarshalJSON implements json.Marshaler, encoding the level as its label.
func (l Level) MarshalJSON() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON implements json.Unmarshaler. Unknown labels are an error,
// never silently mapped to a default.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	level, err := ParseLevel(s)
	if err != nil {
		return err
	}

	*l = level
	return nil
}
