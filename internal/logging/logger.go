// Package logging is the structured logger shared by the server and the CLI.
// Records carry key/value pairs plus whatever the context holds (see
// WithRequestID). Backends: log/slog and zap.
package logging

import "context"

// Logger takes a context and alternating key/value args:
//
//	logger.Info(ctx, "step saved", "user_id", uid, "step", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
