package session

import "errors"

var (
	ErrUnauthorized   = errors.New("session: unauthorized")
	ErrMissingToken   = errors.New("session: missing token")
	ErrInvalidToken   = errors.New("session: invalid token")
	ErrEmptySecret    = errors.New("session: signing secret is empty")
	ErrUnknownDriver  = errors.New("session: unknown driver")
	ErrSessionExpired = errors.New("session: session not found or expired")
)
