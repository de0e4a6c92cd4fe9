package logger

import (
	"log/slog"
	"os"
)

// FatalWithLogger is for startup failures where the watcher cannot run at
// all, e.g. a config that fails validation
func FatalWithLogger(logger *slog.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(1)
}
