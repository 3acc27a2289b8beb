// Package redis connects to Redis with github.com/redis/go-redis/v9.
// The session package stores opaque session tokens in it.
package redis
