// Command server runs the notification HTTP API and live delivery channel.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	notifmodule "github.com/tracepanic/compyle/modules/notifications"
	"github.com/tracepanic/compyle/pkg/broadcast"
	"github.com/tracepanic/compyle/pkg/config"
	"github.com/tracepanic/compyle/pkg/httpserver"
	"github.com/tracepanic/compyle/pkg/logger"
	notify "github.com/tracepanic/compyle/pkg/notifications"
	"github.com/tracepanic/compyle/pkg/requestid"
	"github.com/tracepanic/compyle/pkg/session"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"notifications"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		app       appConfig
		httpCfg   httpserver.Config
		sessCfg   session.Config
		streamCfg notifmodule.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&app) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&sessCfg) },
		func() error { return config.Load(&streamCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	log := logger.New(
		logger.WithEnvironment(app.Env, app.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor(), session.LoggerExtractor()),
	)
	slog.SetDefault(log)

	var (
		store *storeBackend
		auth  *sessionBackend
	)
	var g errgroup.Group
	g.Go(func() (err error) {
		store, err = openStore(ctx, app.StoreDriver, log)
		return err
	})
	g.Go(func() (err error) {
		auth, err = openSession(ctx, sessCfg)
		return err
	})
	if err := g.Wait(); err != nil {
		if store != nil {
			store.close()
		}
		if auth != nil {
			auth.close()
		}
		return err
	}

	bus := broadcast.New[notify.Notification](broadcast.WithLogger(log))
	svc := notify.NewService(store.store, store.users, bus, notify.WithLogger(log))
	streams := notifmodule.NewStreams()

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Get("/health/live", httpserver.HealthCheckHandler(log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(log, append(store.checks, auth.checks...)...))
	r.Mount("/notifications", notifmodule.Router(notifmodule.RouterOptions{
		Service: svc,
		Bus:     bus,
		Session: auth.resolver,
		Streams: streams,
		Config:  streamCfg,
		Logger:  log,
	}))

	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithDrainHook(streams.CloseAll),
		httpserver.WithStopHook(func(l *slog.Logger) {
			if err := bus.Close(); err != nil {
				l.Error("failed to close event bus", logger.Error(err))
			}
			store.close()
			auth.close()
		}),
	)

	log.Info("starting notification server",
		slog.String("addr", httpCfg.Addr),
		slog.String("store", store.driver),
		slog.String("session", sessCfg.Driver),
	)
	return srv.Run(ctx, r)
}
