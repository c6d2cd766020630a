// Package log is the leveled, structured logger shared by every kubedeps package.
//
// It wraps a process-wide slog.Logger. Output is JSON on os.Stderr unless
// KUBEDEPS_LOG_FORMAT (or LOG_FORMAT) is "text". The level is held in a
// slog.LevelVar so the CLI can change it after flags are parsed without
// rebuilding the handler.
//
// Tests redirect output with SetOutput, which returns a restore function.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	levelDebugStr = "DEBUG"
	levelInfoStr  = "INFO"
	levelWarnStr  = "WARN"
	levelErrorStr = "ERROR"

	// FormatJSON selects the JSON handler (default).
	FormatJSON = "json"
	// FormatText selects the human readable text handler.
	FormatText = "text"
)

// ErrInvalidLogLevel indicates an invalid log level string was provided.
var ErrInvalidLogLevel = fmt.Errorf("invalid log level")

var (
	mu           sync.RWMutex
	logger       *slog.Logger
	leveler                = &slog.LevelVar{}
	outputWriter io.Writer = os.Stderr
	format       string
	// keepTimestamps forces the time attribute into JSON output; only log capture helpers set it.
	keepTimestamps bool
)

func init() {
	leveler.Set(slog.LevelInfo)
	format = formatFromEnv()
	configure()
}

func formatFromEnv() string {
	for _, key := range []string{"KUBEDEPS_LOG_FORMAT", "LOG_FORMAT"} {
		if v := strings.ToLower(strings.TrimSpace(os.Getenv(key))); v != "" {
			return v
		}
	}
	return FormatJSON
}

// configure rebuilds the handler from the current writer and format. Callers hold no lock.
func configure() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: leveler}
	var handler slog.Handler
	if format == FormatText {
		handler = slog.NewTextHandler(outputWriter, opts)
	} else {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey && !keepTimestamps {
				return slog.Attr{}
			}
			return a
		}
		handler = slog.NewJSONHandler(outputWriter, opts)
	}
	logger = slog.New(handler)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetOutput redirects log output to w and returns a function restoring the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	mu.Lock()
	previous := outputWriter
	outputWriter = w
	mu.Unlock()
	configure()

	return func() {
		mu.Lock()
		outputWriter = previous
		mu.Unlock()
		configure()
	}
}

// SetFormat switches between FormatJSON and FormatText. Unknown values fall back to JSON.
func SetFormat(f string) {
	f = strings.ToLower(strings.TrimSpace(f))
	if f != FormatText {
		f = FormatJSON
	}
	mu.Lock()
	format = f
	mu.Unlock()
	configure()
}

// Debug logs a debug message with optional key-value pairs
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// Logger returns the underlying slog.Logger.
func Logger() *slog.Logger {
	return current()
}

// Level mirrors slog.Level so callers do not need to import log/slog.
type Level int8

// Log level definitions.
const (
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return levelDebugStr
	case LevelInfo:
		return levelInfoStr
	case LevelWarn:
		return levelWarnStr
	case LevelError:
		return levelErrorStr
	default:
		return "UNKNOWN"
	}
}

// SetLevel changes the active level at runtime.
func SetLevel(level Level) {
	leveler.Set(slog.Level(level))
}

// CurrentLevel returns the active level.
func CurrentLevel() Level {
	return Level(leveler.Level())
}

// ParseLevel parses a level name. On failure it returns LevelInfo and an error wrapping ErrInvalidLogLevel.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case levelDebugStr:
		return LevelDebug, nil
	case levelInfoStr:
		return LevelInfo, nil
	case levelWarnStr, "WARNING":
		return LevelWarn, nil
	case levelErrorStr:
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, levelStr)
	}
}

// SetTestModeWithTimestamps keeps the time attribute in JSON output.
// Only log capture helpers in pkg/testutil call it.
func SetTestModeWithTimestamps(enabled bool) {
	mu.Lock()
	keepTimestamps = enabled
	mu.Unlock()
	configure()
}
