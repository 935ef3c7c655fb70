// Package memory implements an in-memory logging.Logger for tests that
// need to assert on emitted log entries, the way the teacher's
// pkg/logging/memory package does for its assistant pipeline tests.
package memory

import (
	"io"
	"sync"

	"github.com/butter-bot-machines/desim/pkg/logging"
)

// Entry is one recorded log call.
type Entry struct {
	Level logging.Level
	Msg   string
	Args  []interface{}
	Group string
}

// Logger records every call instead of writing to an io.Writer.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
	level   logging.Level
	group   string
	attrs   []interface{}
}

// New creates a new memory logger at the given level.
func New(level logging.Level) *Logger {
	return &Logger{level: level}
}

// Entries returns a copy of everything logged so far.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Logger) record(level logging.Level, msg string, args []interface{}) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	merged := append(append([]interface{}{}, l.attrs...), args...)
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: merged, Group: l.group})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.record(logging.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.record(logging.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.record(logging.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.record(logging.LevelError, msg, args) }

func (l *Logger) With(args ...interface{}) logging.Logger {
	return &Logger{entries: l.entries, level: l.level, group: l.group, attrs: append(append([]interface{}{}, l.attrs...), args...)}
}

func (l *Logger) WithGroup(name string) logging.Logger {
	return &Logger{entries: l.entries, level: l.level, group: name, attrs: l.attrs}
}

func (l *Logger) SetLevel(level logging.Level) { l.level = level }
func (l *Logger) GetLevel() logging.Level       { return l.level }

// SetOutput and GetOutput satisfy logging.Logger but are no-ops: the
// memory logger never writes to an io.Writer.
func (l *Logger) SetOutput(io.Writer) {}
func (l *Logger) GetOutput() io.Writer { return nil }
