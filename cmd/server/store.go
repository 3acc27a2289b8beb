package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tracepanic/compyle/internal/db"
	"github.com/tracepanic/compyle/pkg/config"
	"github.com/tracepanic/compyle/pkg/mongo"
	notify "github.com/tracepanic/compyle/pkg/notifications"
	"github.com/tracepanic/compyle/pkg/pg"
)

const (
	driverPostgres = "postgres"
	driverMongo    = "mongo"
	driverMemory   = "memory"
)

type storeBackend struct {
	driver string
	store  notify.Store
	users  notify.UserLister
	checks []func(context.Context) error
	close  func()
}

func openStore(ctx context.Context, driver string, log *slog.Logger) (*storeBackend, error) {
	switch driver {
	case driverPostgres, "":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, db.Migrations, db.MigrationsDir, cfg, log); err != nil {
			pool.Close()
			return nil, err
		}
		store := notify.NewPGStore(pool)
		return &storeBackend{
			driver: driverPostgres,
			store:  store,
			users:  store,
			checks: []func(context.Context) error{pg.Healthcheck(pool)},
			close:  pool.Close,
		}, nil

	case driverMongo:
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		database, err := mongo.Database(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client := database.Client()
		store := notify.NewMongoStore(database)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &storeBackend{
			driver: driverMongo,
			store:  store,
			users:  store,
			checks: []func(context.Context) error{mongo.Healthcheck(client)},
			close:  func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case driverMemory:
		log.Warn("using in-memory notification store, data is lost on restart")
		store := notify.NewMemoryStore()
		return &storeBackend{driver: driverMemory, store: store, users: store, close: func() {}}, nil
	}

	return nil, fmt.Errorf("unknown STORE_DRIVER %q", driver)
}
