package slog

import (
	"log/slog"

	"github.com/butter-bot-machines/desim/pkg/logging"
)

func levelToSlog(l logging.Level) slog.Level {
	switch l {
	case logging.LevelDebug:
		return slog.LevelDebug
	case logging.LevelInfo:
		return slog.LevelInfo
	case logging.LevelWarn:
		return slog.LevelWarn
	case logging.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
