// Package logging builds the process logger: colored text on the console
// and JSON lines in a rotating file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"

	"talkie/server/backend/config"
)

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgCyan),
	slog.LevelInfo:  color.New(color.FgGreen),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed, color.Bold),
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New returns a logger writing to console and, when cfg.File is set, to a
// rotating file. The returned closer flushes and closes the file sink.
func New(cfg config.LoggingConfig) (*slog.Logger, io.Closer) {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, io.Closer) {
	level := ParseLevel(cfg.Level)

	var consoleHandler slog.Handler
	if cfg.Format == "json" {
		consoleHandler = slog.NewJSONHandler(console, &slog.HandlerOptions{Level: level})
	} else {
		consoleHandler = slog.NewTextHandler(console, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: colorizeLevel,
		})
	}

	if cfg.File == "" {
		return slog.New(consoleHandler), nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	// the file sink never records below info
	fileLevel := level
	if fileLevel < slog.LevelInfo {
		fileLevel = slog.LevelInfo
	}
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: fileLevel})
	return slog.New(slogmulti.Fanout(consoleHandler, fileHandler)), file
}

func colorizeLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	c, ok := levelColors[lvl]
	if !ok {
		return a
	}
	return slog.String(slog.LevelKey, c.Sprint(lvl.String()))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
