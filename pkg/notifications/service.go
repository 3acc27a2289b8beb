package notifications

import (
	"context"
	"log/slog"

	"github.com/tracepanic/compyle/pkg/logger"
	"github.com/tracepanic/compyle/pkg/pg"
	"github.com/tracepanic/compyle/pkg/validator"
)

// Publisher pushes a stored notification to live subscribers.
// *broadcast.Bus[Notification] satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, n Notification) error
}

// Tx is a caller-owned unit of work. Store must run its statements inside
// the transaction and AfterCommit must defer fn until the transaction has
// committed, dropping it on rollback.
type Tx interface {
	Store() Store
	AfterCommit(fn func(ctx context.Context))
}

// Service is the entry point for creating notifications. It persists first
// and publishes second, so a live event always refers to a durable row.
type Service struct {
	store  Store
	users  UserLister
	pub    Publisher
	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store Store, users UserLister, pub Publisher, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		users:  users,
		pub:    pub,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("notifications"))
	return s
}

// Send stores a notification and publishes it on the owner's topic. When
// the insert fails nothing is published. A publish failure is logged only:
// the row exists and clients pick it up on their next poll.
func (s *Service) Send(ctx context.Context, in NewNotification) (Notification, error) {
	in.Content = in.Content.Normalize()
	if err := validateNew(in); err != nil {
		return Notification{}, err
	}
	in.Type = in.Type.OrDefault()

	n, err := s.store.Insert(ctx, in)
	if err != nil {
		return Notification{}, err
	}
	s.publish(ctx, n)
	return n, nil
}

// SendTx stores a notification inside tx and publishes it only after tx
// commits. Rolled back notifications are never pushed.
func (s *Service) SendTx(ctx context.Context, tx Tx, in NewNotification) (Notification, error) {
	in.Content = in.Content.Normalize()
	if err := validateNew(in); err != nil {
		return Notification{}, err
	}
	in.Type = in.Type.OrDefault()

	n, err := tx.Store().Insert(ctx, in)
	if err != nil {
		return Notification{}, err
	}
	tx.AfterCommit(func(ctx context.Context) { s.publish(ctx, n) })
	return n, nil
}

// Broadcast sends c to every user: one batch insert, then one publish per
// created row. No users means no insert and an empty result.
func (s *Service) Broadcast(ctx context.Context, c Content) ([]Notification, error) {
	c = c.Normalize()
	if err := validateContent(c); err != nil {
		return nil, err
	}
	c.Type = c.Type.OrDefault()

	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Notification{}, nil
	}

	batch := make([]NewNotification, len(ids))
	for i, id := range ids {
		batch[i] = c.For(id)
	}

	created, err := s.store.InsertBulk(ctx, batch)
	if err != nil {
		return nil, err
	}
	for _, n := range created {
		s.publish(ctx, n)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "broadcast sent", logger.Count(len(created)))
	return created, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Notification, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.store.List(ctx, userID)
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrUserRequired
	}
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUserRequired
	}
	return s.store.MarkRead(ctx, userID, id)
}

func (s *Service) MarkUnread(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUserRequired
	}
	return s.store.MarkUnread(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserRequired
	}
	return s.store.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUserRequired
	}
	return s.store.Delete(ctx, userID, id)
}

func (s *Service) publish(ctx context.Context, n Notification) {
	if err := s.pub.Publish(ctx, Topic(n.UserID), n); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish notification, it was stored successfully",
			logger.NotificationID(n.ID),
			logger.UserID(n.UserID),
			logger.Error(err),
		)
	}
}

func validateNew(in NewNotification) error {
	if in.UserID == "" {
		return ErrUserRequired
	}
	return validateContent(in.Content)
}

func validateContent(c Content) error {
	link := ""
	if c.Link != nil {
		link = *c.Link
	}
	return validator.Apply(
		validator.Required("title", c.Title),
		validator.MaxLen("title", c.Title, MaxTitleLength),
		validator.Required("message", c.Message),
		validator.MaxLen("message", c.Message, MaxMessageLength),
		validator.When(c.Type != "", validator.OneOf("type", c.Type, Types)),
		validator.When(c.Link != nil, validator.MaxLen("link", link, MaxLinkLength)),
		validator.When(c.Link != nil, validator.Link("link", link)),
	)
}

// PGTx adapts a pg.Tx so SendTx can take part in a transaction started by
// pg.WithTx.
func PGTx(store *PGStore, tx *pg.Tx) Tx {
	return pgTx{store: store.WithTx(tx), tx: tx}
}

type pgTx struct {
	store *PGStore
	tx    *pg.Tx
}

func (t pgTx) Store() Store { return t.store }
func (t pgTx) AfterCommit(fn func(context.Context)) { t.tx.AfterCommit(fn) }
