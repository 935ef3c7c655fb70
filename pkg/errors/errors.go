// Package errors implements the five error kinds spec.md §7 names:
// ClockException, ScheduleMisuse, ProcessMisuse, DeprecatedUsage, and
// ForeignClock. Unlike a general-purpose error-type registry, the set
// of kinds is fixed at compile time - nothing in the engine registers
// a new one at runtime, so there is no Registry to look one up in.
package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// Kind is one of the five error kinds named in spec.md §7.
type Kind struct{ name string }

func (k Kind) String() string { return k.name }

var (
	// ClockException wraps the error a user action returned, surfaced
	// through run's return path.
	ClockException = Kind{"ClockException"}
	// ScheduleMisuse covers scheduling at a past time.
	ScheduleMisuse = Kind{"ScheduleMisuse"}
	// ProcessMisuse covers delay/wait/now called outside a process.
	ProcessMisuse = Kind{"ProcessMisuse"}
	// DeprecatedUsage covers a Symbol argument requiring global-scope
	// evaluation; it warns once rather than failing.
	DeprecatedUsage = Kind{"DeprecatedUsage"}
	// ForeignClock covers using a handle obtained from another clock.
	ForeignClock = Kind{"ForeignClock"}
)

// Error is the concrete error value every constructor in this package
// returns. Its Frame is a single "file:line": the caller of New or
// Wrap. For errors built by the helpers.go constructors that caller is
// the helper itself, so the frame names helpers.go rather than the
// engine code that called the helper. No multi-level stack is captured.
type Error struct {
	Kind  Kind
	msg   string
	cause error
	frame string
}

// New creates a new Error of the given kind.
func New(kind Kind, msg string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(msg, args...), frame: callerFrame(2)}
}

// Wrap wraps cause in a new Error of the given kind. Returns nil if
// cause is nil, so call sites can Wrap an err that may or may not be
// set without an extra nil check.
func Wrap(kind Kind, cause error, msg string, args ...interface{}) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, msg: fmt.Sprintf(msg, args...), cause: cause, frame: callerFrame(2)}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Unwrap exposes cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Frame returns the "file:line" the error was constructed at.
func (e *Error) Frame() string { return e.frame }

// IsType reports whether err is an *Error of the given kind.
func IsType(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

func callerFrame(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	if idx := strings.LastIndex(file, "/"); idx >= 0 {
		file = file[idx+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}
