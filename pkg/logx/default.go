package logx

import "os"

var defaultLogger *Logger

func init() {
	format := FormatConsole
	if os.Getenv("LOG_FORMAT") == "json" {
		format = FormatJSON
	}
	defaultLogger = New(ParseLevel(os.Getenv("LOG_LEVEL")), format, os.Stderr)
}

// SetDefault replaces the package-level default logger
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Default returns the package-level default logger
func Default() *Logger {
	return defaultLogger
}

// SetLevel sets the default logger's level
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// Debug logs a debug message on the default logger
func Debug(msg string) { defaultLogger.Debug(msg) }

// Info logs an info message on the default logger
func Info(msg string) { defaultLogger.Info(msg) }

// Warn logs a warning on the default logger
func Warn(msg string) { defaultLogger.Warn(msg) }

// Error logs an error on the default logger
func Error(msg string) { defaultLogger.Error(msg) }

// Debugf logs a formatted debug message on the default logger
func Debugf(format string, args ...any) { defaultLogger.Debugf(format, args...) }

// Infof logs a formatted info message on the default logger
func Infof(format string, args ...any) { defaultLogger.Infof(format, args...) }

// Warnf logs a formatted warning on the default logger
func Warnf(format string, args ...any) { defaultLogger.Warnf(format, args...) }

// Errorf logs a formatted error on the default logger
func Errorf(format string, args ...any) { defaultLogger.Errorf(format, args...) }

// WithField returns a child of the default logger with one field
func WithField(key string, value any) *Logger { return defaultLogger.WithField(key, value) }

// WithFields returns a child of the default logger with fields
func WithFields(fields Fields) *Logger { return defaultLogger.WithFields(fields) }

// WithError returns a child of the default logger with an error field
func WithError(err error) *Logger { return defaultLogger.WithError(err) }
