// Package session resolves the authenticated user of an HTTP request.
//
// A Resolver turns a request into a user id or fails with ErrUnauthorized.
// Two resolvers ship with the package: JWTResolver validates HS256 bearer
// tokens whose subject is the user id, and RedisResolver looks opaque
// session tokens up under "session:{token}".
//
// Middleware fails closed: requests without a resolvable identity are
// answered with 401 before the next handler runs. Downstream code reads the
// identity with UserID.
//
//	resolver := session.NewJWTResolver(cfg.JWTSecret)
//	r.Group(func(r chi.Router) {
//		r.Use(session.Middleware(resolver, session.WithLogger(log)))
//		r.Get("/notifications", list)
//	})
//
// Tokens are read from the Authorization header first, then from the
// access_token query parameter, which EventSource clients need because they
// cannot set headers.
package session
