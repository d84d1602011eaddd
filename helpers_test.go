package evcap_test

import (
	"errors"
	"testing"

	"github.com/peterbourgon/evcap"
)

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("want error %v, have %v", target, err)
	}
}

func AssertEqual[X comparable](t *testing.T, want, have X) {
	t.Helper()
	if want != have {
		t.Errorf("want %v, have %v", want, have)
	}
}

func newTestEvent(message string, level evcap.Level, target string) *evcap.Event {
	return evcap.NewEvent(evcap.NewEventData(message, level, target))
}
