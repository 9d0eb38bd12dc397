package logger

import (
	"io"
	"log/slog"
	"os"
)

// Init configures the default slog logger. When logFile is non-empty the
// output is mirrored to that file in addition to stdout.
func Init(debug bool, logFile string) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Warn("cannot open log file, logging to stdout only", "path", logFile, "error", err)
		} else {
			out = io.MultiWriter(os.Stdout, f)
		}
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
