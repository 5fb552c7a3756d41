// Package requestctx carries per-request values across layers without
// threading extra parameters through every signature.
package requestctx

import "context"

type key int

const requestIDKey key = iota

// WithRequestID stores the correlation id for this request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the stored correlation id, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
