package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTResolver validates HS256 tokens. The subject claim carries the user id.
type JWTResolver struct {
	secret     []byte
	issuer     string
	queryParam string
}

// JWTOption configures a JWTResolver.
type JWTOption func(*JWTResolver)

// WithIssuer requires tokens to carry issuer.
func WithIssuer(issuer string) JWTOption {
	return func(j *JWTResolver) { j.issuer = issuer }
}

// WithQueryParam changes the query parameter fallback; "" disables it.
func WithQueryParam(name string) JWTOption {
	return func(j *JWTResolver) { j.queryParam = name }
}

func NewJWTResolver(secret string, opts ...JWTOption) (*JWTResolver, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	j := &JWTResolver{secret: []byte(secret), queryParam: "access_token"}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

func (j *JWTResolver) Resolve(r *http.Request) (string, error) {
	raw, err := TokenFromRequest(r, j.queryParam)
	if err != nil {
		return "", errors.Join(ErrUnauthorized, err)
	}
	return j.Verify(raw)
}

// Verify parses raw and returns its subject.
func (j *JWTResolver) Verify(raw string) (string, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(j.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, parserOpts...)
	if err != nil || !token.Valid {
		return "", errors.Join(ErrUnauthorized, ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", errors.Join(ErrUnauthorized, fmt.Errorf("%w: empty subject", ErrInvalidToken))
	}
	return claims.Subject, nil
}

// IssueToken signs a token for userID valid for ttl.
func (j *JWTResolver) IssueToken(userID string, ttl time.Duration) (string, error) {
	return IssueToken(string(j.secret), j.issuer, userID, ttl)
}

// IssueToken signs an HS256 token with subject userID.
func IssueToken(secret, issuer, userID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
