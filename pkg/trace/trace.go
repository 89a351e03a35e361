package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type ctxKey struct{}

// HeaderName is the request/response header carrying the trace id.
const HeaderName = "X-Trace-ID"

// GenerateTraceID returns a random 128-bit id, hex encoded.
func GenerateTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// FromContext returns the trace id stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(ctxKey{}).(string); ok {
		return traceID
	}
	return ""
}

// WithContext stores traceID in ctx.
func WithContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}

// Resolve returns the incoming header value when present, otherwise a fresh id.
func Resolve(headerValue string) string {
	if headerValue != "" && len(headerValue) <= 128 {
		return headerValue
	}
	return GenerateTraceID()
}
