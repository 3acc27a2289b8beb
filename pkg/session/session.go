package session

import (
	"context"
	"net/http"
	"strings"
)

// Resolver identifies the user behind a request.
type Resolver interface {
	Resolve(r *http.Request) (userID string, err error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(r *http.Request) (string, error)

func (f ResolverFunc) Resolve(r *http.Request) (string, error) { return f(r) }

type userIDKey struct{}

// WithUserID stores userID in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID returns the authenticated user id, or "" outside Middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// TokenFromRequest extracts a bearer token from the Authorization header or,
// failing that, from the query parameter param.
func TokenFromRequest(r *http.Request, param string) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", ErrInvalidToken
		}
		return strings.TrimSpace(token), nil
	}
	if param != "" {
		if token := r.URL.Query().Get(param); token != "" {
			return token, nil
		}
	}
	return "", ErrMissingToken
}
