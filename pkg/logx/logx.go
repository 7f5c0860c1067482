// Package logx provides leveled, structured logging with console and JSON
// output. A package-level default logger is configured from the environment
// (LOG_LEVEL, LOG_FORMAT) so importing packages can log without wiring.
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents logging verbosity
type Level uint8

const (
	// LevelDebug for debugging information
	LevelDebug Level = iota
	// LevelInfo for informational messages
	LevelInfo
	// LevelWarn for warning messages
	LevelWarn
	// LevelError for error messages
	LevelError
	// LevelOff disables all logging
	LevelOff
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level, defaulting to info
func ParseLevel(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Fields is a map of structured log fields
type Fields map[string]any

// Logger writes leveled log entries to a single writer.
type Logger struct {
	mu     sync.Mutex
	level  Level
	writer io.Writer
	format Format
	fields Fields
}

// Format selects the output encoding
type Format string

const (
	// FormatConsole is a human-readable single-line format
	FormatConsole Format = "console"
	// FormatJSON emits one JSON object per entry
	FormatJSON Format = "json"
)

// New creates a logger writing to w
func New(level Level, format Format, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	if format == "" {
		format = FormatConsole
	}
	return &Logger{level: level, writer: w, format: format}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// WithField returns a logger that includes the field on every entry
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(Fields{key: value})
}

// WithFields returns a logger that includes the fields on every entry
func (l *Logger) WithFields(fields Fields) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{level: l.level, writer: l.writer, format: l.format, fields: merged}
}

// WithError returns a logger with an error field
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *Logger) log(level Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || l.level == LevelOff {
		return
	}

	entry := entry{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
		Fields:  l.fields,
	}

	var line []byte
	if l.format == FormatJSON {
		line = entry.json()
	} else {
		line = entry.console()
	}
	l.writer.Write(line)
}

// Debug logs a debug level message
func (l *Logger) Debug(msg string) { l.log(LevelDebug, msg) }

// Info logs an info level message
func (l *Logger) Info(msg string) { l.log(LevelInfo, msg) }

// Warn logs a warning level message
func (l *Logger) Warn(msg string) { l.log(LevelWarn, msg) }

// Error logs an error level message
func (l *Logger) Error(msg string) { l.log(LevelError, msg) }

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, fmt.Sprintf(format, args...)) }

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) { l.log(LevelInfo, fmt.Sprintf(format, args...)) }

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...any) { l.log(LevelWarn, fmt.Sprintf(format, args...)) }

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, fmt.Sprintf(format, args...)) }
