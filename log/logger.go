// Package log provides the minimal structured logging surface used across
// gitnotes. Callers plug in their own implementation; by default nothing is
// logged.
package log

import "context"

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o ../internal/fakes/logger.go . Logger

// Logger is a minimal leveled key/value logging interface.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Noop implements Logger but does nothing. It is the default logger.
type Noop struct{}

func (Noop) Debug(msg string, keysAndValues ...any) {}
func (Noop) Info(msg string, keysAndValues ...any)  {}
func (Noop) Warn(msg string, keysAndValues ...any)  {}
func (Noop) Error(msg string, keysAndValues ...any) {}

// loggerCtxKey is the key used to store the logger in the context.
type loggerCtxKey struct{}

// ToContext returns a new context carrying the given logger. Operations
// performed with the returned context log through it.
func ToContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves the logger stored in the context, or a no-op
// logger when none is present.
func FromContext(ctx context.Context) Logger {
	logger, ok := ctx.Value(loggerCtxKey{}).(Logger)
	if !ok || logger == nil {
		return Noop{}
	}
	return logger
}
