package main

import (
	"context"
	"fmt"

	"github.com/tracepanic/compyle/pkg/config"
	"github.com/tracepanic/compyle/pkg/redis"
	"github.com/tracepanic/compyle/pkg/session"
)

type sessionBackend struct {
	resolver session.Resolver
	checks   []func(context.Context) error
	close    func()
}

func openSession(ctx context.Context, cfg session.Config) (*sessionBackend, error) {
	switch cfg.Driver {
	case session.DriverJWT, "":
		resolver, err := session.NewJWTResolver(cfg.JWTSecret,
			session.WithIssuer(cfg.JWTIssuer),
			session.WithQueryParam(cfg.QueryParam),
		)
		if err != nil {
			return nil, err
		}
		return &sessionBackend{resolver: resolver, close: func() {}}, nil

	case session.DriverRedis:
		var rcfg redis.Config
		if err := config.Load(&rcfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, rcfg)
		if err != nil {
			return nil, err
		}
		return &sessionBackend{
			resolver: session.NewRedisResolver(client,
				session.WithKeyPrefix(cfg.KeyPrefix),
				session.WithRedisQueryParam(cfg.QueryParam),
			),
			checks: []func(context.Context) error{redis.Healthcheck(client)},
			close:  func() { _ = client.Close() },
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", session.ErrUnknownDriver, cfg.Driver)
}
