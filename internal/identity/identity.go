package identity

import "context"

type ctxKey struct{}

// Resolver answers "who is calling" for the current request.
type Resolver interface {
	CurrentUser(ctx context.Context) (userID string, ok bool)
}

// WithUser returns a copy of ctx carrying the authenticated user ID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// FromContext extracts the user ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// ContextResolver resolves the identity placed on the context by the auth middleware.
type ContextResolver struct{}

func (ContextResolver) CurrentUser(ctx context.Context) (string, bool) {
	id := FromContext(ctx)
	return id, id != ""
}

// Static always resolves to the same user. Empty means nobody is signed in.
type Static string

func (s Static) CurrentUser(context.Context) (string, bool) {
	return string(s), s != ""
}
