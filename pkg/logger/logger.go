package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Leveled process-wide logger for the registry service.
// Debugf/Infof/Warnf/Errorf/Fatalf format like fmt and emit slog text records.

var (
	mu      sync.RWMutex
	level                = new(slog.LevelVar)
	handler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	base                 = slog.New(handler)
)

// Init sets the global log level (case-insensitive: debug, info, warn, error).
// Unknown values fall back to info.
func Init(l string) {
	level.Set(parseLevel(l))
}

// SetOutput redirects log records to w, keeping the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	base = slog.New(handler)
}

func parseLevel(l string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func logf(lvl slog.Level, format string, v ...interface{}) {
	mu.RLock()
	l := base
	mu.RUnlock()
	if !l.Enabled(context.Background(), lvl) {
		return
	}
	l.Log(context.Background(), lvl, fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) { logf(slog.LevelDebug, format, v...) }
func Infof(format string, v ...interface{})  { logf(slog.LevelInfo, format, v...) }
func Warnf(format string, v ...interface{})  { logf(slog.LevelWarn, format, v...) }
func Errorf(format string, v ...interface{}) { logf(slog.LevelError, format, v...) }

func Fatalf(format string, v ...interface{}) {
	mu.RLock()
	l := base
	mu.RUnlock()
	l.Error(fmt.Sprintf(format, v...), "fatal", true)
	os.Exit(1)
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	switch level.Level() {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	}
	return "info"
}
