package logging

import (
	"log/slog"
	"os"
)

// SetupJSON sets slog's default logger to use JSON output at the given level.
func SetupJSON(level slog.Level) {
	logger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	)
	slog.SetDefault(logger)
}

// Component returns a logger tagged with the emitting component, so batch
// runs from the settlement and reconciliation engines can be filtered.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
