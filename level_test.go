package evcap_test

import (
	"encoding/json"
	"testing"

	"github.com/peterbourgon/evcap"
)

func TestLevelOrdering(t *testing.T) {
	t.Parallel()

	levels := evcap.Levels()

	AssertEqual(t, 5, len(levels))
	AssertEqual(t, evcap.LevelError, levels[0])
	AssertEqual(t, evcap.LevelTrace, levels[4])

	for i := 1; i < len(levels); i++ {
		if levels[i-1] <= levels[i] {
			t.Errorf("levels out of order: %s <= %s", levels[i-1], levels[i])
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		input string
		want  evcap.Level
	}{
		{"ERROR", evcap.LevelError},
		{"error", evcap.LevelError},
		{" Warn ", evcap.LevelWarn},
		{"INFO", evcap.LevelInfo},
		{"debug", evcap.LevelDebug},
		{"TRACE", evcap.LevelTrace},
	} {
		level, err := evcap.ParseLevel(tc.input)
		AssertNoError(t, err)
		AssertEqual(t, tc.want, level)
	}

	for _, input := range []string{"", "FATAL", "INFO2", "notice"} {
		if _, err := evcap.ParseLevel(input); err == nil {
			t.Errorf("ParseLevel(%q): want error, have none", input)
		}
	}
}

func TestLevelJSON(t *testing.T) {
	t.Parallel()

	for _, level := range evcap.Levels() {
		data, err := json.Marshal(level)
		AssertNoError(t, err)
		AssertEqual(t, `"`+level.String()+`"`, string(data))

		var have evcap.Level
		AssertNoError(t, json.Unmarshal(data, &have))
		AssertEqual(t, level, have)
	}

	var level evcap.Level
	if err := json.Unmarshal([]byte(`"VERBOSE"`), &level); err == nil {
		t.Fatal("unknown label: want error, have none")
	}
	if err := json.Unmarshal([]byte(`3`), &level); err == nil {
		t.Fatal("numeric level: want error, have none")
	}
}
