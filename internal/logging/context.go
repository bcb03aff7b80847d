package logging

import "context"

type ctxKey struct{}

// RequestIDKey is the attribute name used for the request id.
const RequestIDKey = "request_id"

// WithRequestID returns ctx carrying id. Both backends add it to every
// record logged with that context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// withContext appends the context attributes to args.
func withContext(ctx context.Context, args []any) []any {
	if id := RequestID(ctx); id != "" {
		return append(args, RequestIDKey, id)
	}
	return args
}
