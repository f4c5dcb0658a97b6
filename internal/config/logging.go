package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo // Default to INFO if invalid/empty
	}
}

// GetLogLevel returns the log level from LOG_LEVEL environment variable
// Defaults to INFO if not set or invalid
func GetLogLevel() slog.Level {
	return parseLogLevel(os.Getenv("LOG_LEVEL"))
}

// NewLogger creates a new structured logger with the configured log level
// HTTP mode logs JSON to stdout.
// Stdio and CLI modes log text to stderr so stdout stays clean for MCP frames and reports.
func NewLogger(isStdioMode bool) *slog.Logger {
	if isStdioMode {
		return newLogger(os.Stderr, false, GetLogLevel())
	}
	return newLogger(os.Stdout, true, GetLogLevel())
}

// NewTextLogger creates a text-based logger with the configured log level
func NewTextLogger(output io.Writer) *slog.Logger {
	return newLogger(output, false, GetLogLevel())
}

// NewTestLogger creates a logger for testing with configurable level and output
// If level is empty, uses LOG_LEVEL environment variable
func NewTestLogger(output io.Writer, level string) *slog.Logger {
	logLevel := GetLogLevel()
	if level != "" {
		logLevel = parseLogLevel(level)
	}
	return newLogger(output, false, logLevel)
}

func newLogger(output io.Writer, json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	if json {
		return slog.New(slog.NewJSONHandler(output, opts))
	}
	return slog.New(slog.NewTextHandler(output, opts))
}
