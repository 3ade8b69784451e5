// Package logger provides structured logging with configurable log levels.
// It wraps log/slog and picks a JSON or text handler based on the
// deployment environment.
package logger
