package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/five82/roster/internal/observability"
)

// SetupLogging points the default slog logger at a JSON log file and
// registers a file-backed "slog" observer. The returned function closes the
// file and restores the previous default logger.
func SetupLogging(path string, debug bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))

	previous := slog.Default()
	prevObserver, _ := observability.GetObserver("slog")
	slog.SetDefault(logger)
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	return func() {
		slog.SetDefault(previous)
		if prevObserver != nil {
			observability.RegisterObserver("slog", prevObserver)
		}
		_ = file.Close()
	}, nil
}
