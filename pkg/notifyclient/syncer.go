package notifyclient

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/tracepanic/compyle/pkg/logger"
)

// Source is what the Syncer reads from. *API implements it.
type Source interface {
	List(ctx context.Context) (ListResult, error)
	Stream(ctx context.Context) (*Stream, error)
}

// Syncer keeps a State current: a poll loop replaces it on an interval and a
// push loop upserts live notifications, reconnecting with backoff.
type Syncer struct {
	src   Source
	state *State
	log   *slog.Logger

	interval    time.Duration
	backoffBase time.Duration
	backoffMax  time.Duration
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithPollInterval sets the poll period. Zero or negative disables polling
// after the first fetch.
func WithPollInterval(d time.Duration) SyncerOption {
	return func(s *Syncer) { s.interval = d }
}

// WithReconnectBackoff sets the exponential reconnect delay bounds.
func WithReconnectBackoff(base, maxDelay time.Duration) SyncerOption {
	return func(s *Syncer) {
		if base > 0 {
			s.backoffBase = base
		}
		if maxDelay >= base {
			s.backoffMax = maxDelay
		}
	}
}

func WithSyncerLogger(l *slog.Logger) SyncerOption {
	return func(s *Syncer) {
		if l != nil {
			s.log = l
		}
	}
}

func NewSyncer(src Source, state *State, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		src:         src,
		state:       state,
		log:         slog.Default(),
		interval:    30 * time.Second,
		backoffBase: 500 * time.Millisecond,
		backoffMax:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ctx is cancelled or the session is rejected. A cancelled
// context yields nil.
func (s *Syncer) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.pollLoop(gctx) })
	g.Go(func() error { return s.pushLoop(gctx) })

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Resync replaces the state with the server's current list.
func (s *Syncer) Resync(ctx context.Context) error {
	res, err := s.src.List(ctx)
	if err != nil {
		return err
	}
	s.state.Replace(res.Notifications)
	return nil
}

func (s *Syncer) pollLoop(ctx context.Context) error {
	if err := s.poll(ctx); err != nil {
		return err
	}
	if s.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.poll(ctx); err != nil {
				return err
			}
		}
	}
}

// poll only fails on errors retrying cannot fix.
func (s *Syncer) poll(ctx context.Context) error {
	err := s.Resync(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnauthorized):
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	}
	s.log.LogAttrs(ctx, slog.LevelWarn, "poll failed", logger.Error(err), logger.Component("syncer"))
	return nil
}

func (s *Syncer) pushLoop(ctx context.Context) error {
	for reconnect := false; ; reconnect = true {
		stream, err := s.connect(ctx)
		if err != nil {
			return err
		}

		// Events published while disconnected are only recoverable by polling.
		if reconnect {
			if err := s.poll(ctx); err != nil {
				stream.Close()
				return err
			}
		}

		for n := range stream.C() {
			s.state.Upsert(n)
		}
		stream.Close()
		if err := stream.Err(); err != nil {
			s.log.LogAttrs(ctx, slog.LevelInfo, "stream ended", logger.Error(err), logger.Component("syncer"))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoffBase):
		}
	}
}

func (s *Syncer) connect(ctx context.Context) (*Stream, error) {
	backoff := retry.WithJitterPercent(10, retry.WithCappedDuration(s.backoffMax, retry.NewExponential(s.backoffBase)))

	var stream *Stream
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		stream, err = s.src.Stream(ctx)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrUnauthorized):
			return err
		}
		s.log.LogAttrs(ctx, slog.LevelWarn, "stream connect failed", logger.Error(err), logger.Component("syncer"))
		return retry.RetryableError(err)
	})
	return stream, err
}
