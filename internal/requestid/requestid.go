package requestid

import (
	"context"

	"github.com/google/uuid"
)

// MaxLen bounds an upstream X-Request-ID before it is trusted.
const MaxLen = 64

type ctxKey struct{}

// New generates a random UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

// Accept returns incoming when it is safe to echo into headers and logs,
// otherwise a freshly generated ID.
func Accept(incoming string) string {
	if incoming == "" || len(incoming) > MaxLen {
		return New()
	}
	for _, r := range incoming {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return New()
		}
	}
	return incoming
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
