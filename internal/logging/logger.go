package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the global slog logger: text output in development,
// JSON everywhere else.
func Setup(env string) *slog.Logger {
	logger := slog.New(NewConsoleHandler(os.Stdout, env))
	slog.SetDefault(logger)
	return logger
}

// NewConsoleHandler returns the stdout handler used alone at startup and
// alongside the store handler once the database is reachable.
func NewConsoleHandler(w io.Writer, env string) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "development" {
		opts.Level = slog.LevelDebug
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
