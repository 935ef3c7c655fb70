package watcher

import (
	"io"

	"github.com/butter-bot-machines/desim/pkg/logging"
)

// noopLogger is used when New is called without a logger.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) With(...interface{}) logging.Logger   { return noopLogger{} }
func (noopLogger) WithGroup(string) logging.Logger       { return noopLogger{} }
func (noopLogger) SetLevel(logging.Level)                {}
func (noopLogger) GetLevel() logging.Level               { return logging.LevelInfo }
func (noopLogger) SetOutput(io.Writer)                   {}
func (noopLogger) GetOutput() io.Writer                  { return nil }
