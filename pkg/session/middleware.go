package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tracepanic/compyle/handler"
	"github.com/tracepanic/compyle/pkg/logger"
)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	log *slog.Logger
}

func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// Middleware resolves the user of every request and rejects anonymous ones.
func Middleware(resolver Resolver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{log: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolver.Resolve(r)
			if err != nil || userID == "" {
				cfg.log.LogAttrs(r.Context(), slog.LevelDebug, "request rejected",
					logger.Error(err),
					slog.String("path", r.URL.Path),
					logger.Component("session"),
				)
				writeUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// LoggerExtractor adds the authenticated user id to log records.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id := UserID(ctx)
		if id == "" {
			return slog.Attr{}, false
		}
		return logger.UserID(id), true
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	_ = handler.JSONError(handler.ErrUnauthorized).Render(w, r)
}
