package notifyclient

import (
	"context"
	"log/slog"

	"github.com/tracepanic/compyle/pkg/logger"
	notify "github.com/tracepanic/compyle/pkg/notifications"
)

// Mutator is the server side of a command. *API implements it.
type Mutator interface {
	MarkRead(ctx context.Context, id string) error
	MarkUnread(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

// command is one optimistic mutation: apply changes local state, call makes
// the change on the server.
type command struct {
	name  string
	id    string
	apply func(*State)
	call  func(context.Context) error
}

// Commands applies mutations optimistically. When the server call fails the
// state is restored to the snapshot taken before apply, resync runs, and the
// error is returned.
type Commands struct {
	server Mutator
	state  *State
	resync func(context.Context) error
	log    *slog.Logger
}

// CommandsOption configures Commands.
type CommandsOption func(*Commands)

func WithCommandsLogger(l *slog.Logger) CommandsOption {
	return func(c *Commands) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCommands binds server and state. resync may be nil.
func NewCommands(server Mutator, state *State, resync func(context.Context) error, opts ...CommandsOption) *Commands {
	c := &Commands{server: server, state: state, resync: resync, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Commands) MarkRead(ctx context.Context, id string) error {
	return c.run(ctx, command{
		name:  "mark_read",
		id:    id,
		apply: func(s *State) { s.Apply(id, setRead(true)) },
		call:  func(ctx context.Context) error { return c.server.MarkRead(ctx, id) },
	})
}

func (c *Commands) MarkUnread(ctx context.Context, id string) error {
	return c.run(ctx, command{
		name:  "mark_unread",
		id:    id,
		apply: func(s *State) { s.Apply(id, setRead(false)) },
		call:  func(ctx context.Context) error { return c.server.MarkUnread(ctx, id) },
	})
}

func (c *Commands) MarkAllRead(ctx context.Context) error {
	return c.run(ctx, command{
		name:  "mark_all_read",
		apply: func(s *State) { s.ApplyAll(setRead(true)) },
		call:  c.server.MarkAllRead,
	})
}

func (c *Commands) Delete(ctx context.Context, id string) error {
	return c.run(ctx, command{
		name:  "delete",
		id:    id,
		apply: func(s *State) { s.Remove(id) },
		call:  func(ctx context.Context) error { return c.server.Delete(ctx, id) },
	})
}

func (c *Commands) run(ctx context.Context, cmd command) error {
	snap := c.state.snapshot()
	cmd.apply(c.state)

	err := cmd.call(ctx)
	if err == nil {
		return nil
	}

	c.log.LogAttrs(ctx, slog.LevelWarn, "notification command failed, reverting",
		logger.Event(cmd.name),
		logger.NotificationID(cmd.id),
		logger.Error(err),
	)
	c.state.restore(snap)

	if c.resync != nil {
		if rerr := c.resync(ctx); rerr != nil {
			c.log.LogAttrs(ctx, slog.LevelWarn, "resync after failed command", logger.Error(rerr))
		}
	}
	return err
}

func setRead(read bool) func(*notify.Notification) {
	return func(n *notify.Notification) {
		if n.Read != read {
			n.Read = read
			touch(n)
		}
	}
}
