package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisResolver maps opaque tokens to user ids stored in Redis.
type RedisResolver struct {
	client     redis.Cmdable
	prefix     string
	queryParam string
}

// RedisOption configures a RedisResolver.
type RedisOption func(*RedisResolver)

func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisResolver) { s.prefix = prefix }
}

func WithRedisQueryParam(name string) RedisOption {
	return func(s *RedisResolver) { s.queryParam = name }
}

func NewRedisResolver(client redis.Cmdable, opts ...RedisOption) *RedisResolver {
	s := &RedisResolver{client: client, prefix: "session:", queryParam: "access_token"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisResolver) Resolve(r *http.Request) (string, error) {
	token, err := TokenFromRequest(r, s.queryParam)
	if err != nil {
		return "", errors.Join(ErrUnauthorized, err)
	}

	userID, err := s.client.Get(r.Context(), s.prefix+token).Result()
	if errors.Is(err, redis.Nil) || (err == nil && userID == "") {
		return "", errors.Join(ErrUnauthorized, ErrSessionExpired)
	}
	if err != nil {
		return "", errors.Join(ErrUnauthorized, err)
	}
	return userID, nil
}

// IssueToken creates a random session token for userID that expires after ttl.
func (s *RedisResolver) IssueToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.prefix+token, userID, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Revoke deletes token.
func (s *RedisResolver) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.prefix+token).Err()
}
