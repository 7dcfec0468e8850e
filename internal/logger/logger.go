// Package logger provides the process-wide structured logger for Librarian.
// Messages are formatted printf-style and emitted through log/slog: a text
// handler when writing to a terminal, JSON otherwise. When verbose mode is
// enabled via the --verbose flag, debug messages and section headers are
// emitted too.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Setup.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string

	// File, when set, receives the log instead of stderr and is rotated.
	File string

	// Format is text, json or auto. Auto picks text on a terminal.
	Format string

	// Verbose forces debug level.
	Verbose bool
}

var (
	mu      sync.RWMutex
	verbose bool
	format  = "auto"
	output  io.Writer = os.Stderr
	level   = new(slog.LevelVar)
	closer  io.Closer
	log     = build(os.Stderr, "auto")
)

// Setup configures level, format and destination in one step.
func Setup(opts Options) error {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	var w io.Writer = os.Stderr
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		}
		w = rotating
		closer = rotating
	}
	if opts.Format != "" {
		format = opts.Format
	}
	verbose = opts.Verbose
	if verbose {
		lvl = slog.LevelDebug
	}
	level.Set(lvl)
	output = w
	log = build(w, format)
	return nil
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build(w, format)
}

// SetFormat selects text, json or auto for the current output.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	format = f
	log = build(output, f)
}

// Slog returns the underlying logger for libraries that accept one.
func Slog() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(slog.LevelDebug, format, args...)
}

// Section logs a section header if verbose mode is enabled.
func Section(name string) {
	emit(slog.LevelDebug, "=== %s ===", name)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	emit(slog.LevelInfo, format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	emit(slog.LevelWarn, format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	emit(slog.LevelError, format, args...)
}

func emit(lvl slog.Level, format string, args ...any) {
	l := Slog()
	ctx := context.Background()
	if !l.Enabled(ctx, lvl) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.Log(ctx, lvl, msg)
}

func build(w io.Writer, f string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f == "json" || (f == "auto" && !isTerminal(w)) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
