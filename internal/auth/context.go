// Package auth carries the authenticated admin through a request.
package auth

import "context"

type contextKey struct{}

// Admin identifies who made a change. Username is empty when the server
// runs without credentials.
type Admin struct {
	Username string
}

func WithAdmin(ctx context.Context, a Admin) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (Admin, bool) {
	a, ok := ctx.Value(contextKey{}).(Admin)
	return a, ok
}

// Username returns the admin name for logging, or "anonymous".
func Username(ctx context.Context) string {
	a, ok := FromContext(ctx)
	if !ok || a.Username == "" {
		return "anonymous"
	}
	return a.Username
}
