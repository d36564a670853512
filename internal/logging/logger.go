package logging

import (
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(stdoutHandler()))
}

// WithDatabase mirrors ERROR records into db next to stdout. The caller
// still owns db and must Stop it on shutdown.
func WithDatabase(db *DBHandler) {
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(), db)))
}

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}
