package errors

import (
	"strings"
	"testing"
)

func TestNewAndType(t *testing.T) {
	err := New(ScheduleMisuse, "bad time %d", 5)
	if !IsType(err, ScheduleMisuse) {
		t.Fatalf("expected ScheduleMisuse, got %v", err.Kind)
	}
	if !strings.Contains(err.Error(), "bad time 5") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if err.Frame() == "" {
		t.Fatal("expected a non-empty call-site frame")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := New(ProcessMisuse, "delay outside process")
	wrapped := Wrap(ClockException, cause, "run failed")
	if !strings.Contains(wrapped.Error(), "run failed") {
		t.Fatalf("wrap message missing: %s", wrapped.Error())
	}
	if wrapped.Unwrap() != error(cause) {
		t.Fatalf("expected Unwrap to return the original cause")
	}
}

func TestWrapNilCauseReturnsNil(t *testing.T) {
	if Wrap(ClockException, nil, "run failed") != nil {
		t.Fatal("expected Wrap(nil) to return nil")
	}
}

func TestIsTypeRejectsOtherKinds(t *testing.T) {
	err := New(ForeignClock, "boom")
	if IsType(err, ProcessMisuse) {
		t.Fatal("expected ForeignClock error not to match ProcessMisuse")
	}
	if IsType(error(nil), ForeignClock) {
		t.Fatal("expected nil error not to match any kind")
	}
}

func TestHelpers(t *testing.T) {
	if !IsType(NewScheduleMisuse(1, 5), ScheduleMisuse) {
		t.Fatal("NewScheduleMisuse should be ScheduleMisuse")
	}
	if !IsType(NewProcessMisuse("delay"), ProcessMisuse) {
		t.Fatal("NewProcessMisuse should be ProcessMisuse")
	}
	if !IsType(NewForeignClock("process handle"), ForeignClock) {
		t.Fatal("NewForeignClock should be ForeignClock")
	}
	if !IsType(NewClockException(3.5, New(ProcessMisuse, "boom")), ClockException) {
		t.Fatal("NewClockException should be ClockException")
	}
}
