// Package slog adapts the standard library's log/slog package to the
// logging.Logger interface, the way the teacher's pkg/logging/slog
// package does.
package slog

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/butter-bot-machines/desim/pkg/logging"
)

// Wrapper wraps *slog.Logger to implement logging.Logger.
type Wrapper struct {
	*slog.Logger
	level  logging.Level
	output io.Writer
}

// New creates a new JSON-handler logger at the given level and output.
func New(level logging.Level, output io.Writer) logging.Logger {
	if output == nil {
		output = os.Stderr
	}
	handler := newHandler(level, output)
	return &Wrapper{
		Logger: slog.New(handler),
		level:  level,
		output: output,
	}
}

func newHandler(level logging.Level, output io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: levelToSlog(level)}
	return slog.NewJSONHandler(output, opts).WithAttrs([]slog.Attr{
		slog.String("level", strings.ToLower(level.String())),
	})
}

func (w *Wrapper) GetLevel() logging.Level { return w.level }

func (w *Wrapper) SetLevel(level logging.Level) {
	w.level = level
	w.Logger = slog.New(newHandler(level, w.output))
}

func (w *Wrapper) GetOutput() io.Writer { return w.output }

func (w *Wrapper) SetOutput(out io.Writer) {
	w.output = out
	w.Logger = slog.New(newHandler(w.level, out))
}

func (w *Wrapper) With(args ...interface{}) logging.Logger {
	if len(args)%2 != 0 {
		args = append(args, "MISSING_VALUE")
	}
	return &Wrapper{
		Logger: w.Logger.With(args...),
		level:  w.level,
		output: w.output,
	}
}

func (w *Wrapper) WithGroup(name string) logging.Logger {
	return &Wrapper{
		Logger: w.Logger.WithGroup(name),
		level:  w.level,
		output: w.output,
	}
}

func (w *Wrapper) Debug(msg string, args ...interface{}) { w.Logger.Debug(msg, args...) }
func (w *Wrapper) Info(msg string, args ...interface{})  { w.Logger.Info(msg, args...) }
func (w *Wrapper) Warn(msg string, args ...interface{})  { w.Logger.Warn(msg, args...) }
func (w *Wrapper) Error(msg string, args ...interface{}) { w.Logger.Error(msg, args...) }
