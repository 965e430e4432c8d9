// Package logger provides adapters for the logging interface.
package logger

import (
	"context"
	"strings"
)

// redacted replaces the value of sensitive fields.
const redacted = "[REDACTED]"

// sensitiveKeys are field key fragments whose values are never logged.
var sensitiveKeys = []string{"token", "password", "secret", "auth"}

// Logger defines the logging interface used throughout the application.
// External loggers that implement these methods can be wrapped with ZapAdapter.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]any)
	Debug(ctx context.Context, msg string, fields map[string]any)
	Warn(ctx context.Context, msg string, fields map[string]any)
	Error(ctx context.Context, msg string, err error, fields map[string]any)
}

// ZapAdapter adapts a Logger to the application's logging interface.
// It adds its base fields to every entry and masks credential values.
type ZapAdapter struct {
	log  Logger
	base map[string]any
}

// NewZapAdapter creates a new ZapAdapter wrapping the given logger.
func NewZapAdapter(log Logger) *ZapAdapter {
	return &ZapAdapter{log: log}
}

// With returns an adapter that adds fields to every entry.
// Fields passed to a log call win over base fields with the same key.
func (a *ZapAdapter) With(fields map[string]any) *ZapAdapter {
	base := make(map[string]any, len(a.base)+len(fields))
	for k, v := range a.base {
		base[k] = v
	}
	for k, v := range fields {
		base[k] = v
	}
	return &ZapAdapter{log: a.log, base: base}
}

// ForComponent returns an adapter tagging entries with the component name.
func (a *ZapAdapter) ForComponent(name string) *ZapAdapter {
	return a.With(map[string]any{"component": name})
}

// Info logs an info message.
func (a *ZapAdapter) Info(ctx context.Context, msg string, fields map[string]any) {
	a.log.Info(ctx, msg, a.fields(fields))
}

// Debug logs a debug message.
func (a *ZapAdapter) Debug(ctx context.Context, msg string, fields map[string]any) {
	a.log.Debug(ctx, msg, a.fields(fields))
}

// Warn logs a warning message.
func (a *ZapAdapter) Warn(ctx context.Context, msg string, fields map[string]any) {
	a.log.Warn(ctx, msg, a.fields(fields))
}

// Error logs an error message.
func (a *ZapAdapter) Error(ctx context.Context, msg string, err error, fields map[string]any) {
	a.log.Error(ctx, msg, err, a.fields(fields))
}

// fields merges the base fields with fields and masks sensitive values.
// It returns nil when there is nothing to log.
func (a *ZapAdapter) fields(fields map[string]any) map[string]any {
	if len(a.base) == 0 && len(fields) == 0 {
		return nil
	}
	merged := make(map[string]any, len(a.base)+len(fields))
	for k, v := range a.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	for k := range merged {
		if isSensitive(k) {
			merged[k] = redacted
		}
	}
	return merged
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
