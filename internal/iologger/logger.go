// Package iologger initializes the global slog logger from the log
// section of the configuration.
package iologger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
)

// LogFile is the name of the log file inside the log directory.
const LogFile = "gomi.log"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init sets the default slog logger. With "file" destination the log
// goes to LogFile in logDir, appended when append is true and truncated
// otherwise. The returned Closer releases the file.
func Init(logDir string, cfg config.LogConfig, append bool) (io.Closer, error) {
	var writer io.Writer
	var closer io.Closer = nopCloser{}

	switch cfg.Destination {
	case "stdout":
		writer = os.Stdout
	case "file":
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, CreateLogFileError(logDir, err)
		}
		path := filepath.Join(logDir, LogFile)
		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if append {
			flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}
		file, err := os.OpenFile(path, flags, 0644)
		if err != nil {
			return nil, CreateLogFileError(path, err)
		}
		writer, closer = file, file
	default:
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}
	slog.SetDefault(slog.New(handler).With("app", "gomi"))

	return closer, nil
}

// ParseLevel converts a level name to slog.Level, Info by default.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
