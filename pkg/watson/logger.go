package watson

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// NewDefaultLogger creates a JSON logger writing to w at the given level
// ("debug", "info", ...). An unparsable level falls back to info.
func NewDefaultLogger(w io.Writer, level string) *ZerologLogger {
	if w == nil {
		w = os.Stderr
	}

	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
		lvl = parsed
	}

	logger := zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("component", "watson").
		Logger()

	return &ZerologLogger{logger: logger}
}

// NewConsoleLogger creates a human friendly logger for terminals.
func NewConsoleLogger(w io.Writer, level string) *ZerologLogger {
	if w == nil {
		w = os.Stderr
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}

	return NewDefaultLogger(console, level)
}

// Zerolog returns the underlying logger.
func (l *ZerologLogger) Zerolog() zerolog.Logger {
	return l.logger
}

// Debug logs at debug level.
func (l *ZerologLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs at info level.
func (l *ZerologLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs at warn level.
func (l *ZerologLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs at error level.
func (l *ZerologLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}

// NopLogger discards everything.
type NopLogger struct{}

// Debug does nothing.
func (NopLogger) Debug(string, map[string]interface{}) {}

// Info does nothing.
func (NopLogger) Info(string, map[string]interface{}) {}

// Warn does nothing.
func (NopLogger) Warn(string, map[string]interface{}) {}

// Error does nothing.
func (NopLogger) Error(string, map[string]interface{}) {}
