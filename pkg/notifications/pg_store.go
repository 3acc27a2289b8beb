package notifications

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tracepanic/compyle/pkg/pg"
)

// Querier is the subset of pgx shared by pools, connections and
// transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the PostgreSQL Store. Schema lives in internal/db/migrations.
type PGStore struct {
	db Querier
}

func NewPGStore(db Querier) *PGStore {
	return &PGStore{db: db}
}

// WithTx returns a store that runs every statement inside tx. The caller
// owns commit and rollback.
func (s *PGStore) WithTx(tx pgx.Tx) *PGStore {
	return &PGStore{db: tx}
}

const notificationColumns = `id, user_id, title, message, type, read, link, created_at, updated_at`

const (
	queryList = `SELECT ` + notificationColumns + `
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

	queryCountUnread = `SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT read`

	querySetRead = `UPDATE notifications
SET read = $3, updated_at = now()
WHERE id = $1 AND user_id = $2`

	queryMarkAllRead = `UPDATE notifications
SET read = TRUE, updated_at = now()
WHERE user_id = $1 AND NOT read`

	queryDelete = `DELETE FROM notifications WHERE id = $1 AND user_id = $2`

	queryInsertBulk = `INSERT INTO notifications (id, user_id, title, message, type, link)
SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[])
RETURNING ` + notificationColumns

	queryListUserIDs = `SELECT id FROM users ORDER BY id`
)

func (s *PGStore) List(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := s.db.Query(ctx, queryList, userID, ListLimit)
	if err != nil {
		return nil, storageError(msgList, err)
	}
	out, err := pgx.CollectRows(rows, scanNotification)
	if err != nil {
		return nil, storageError(msgList, err)
	}
	return out, nil
}

func (s *PGStore) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, queryCountUnread, userID).Scan(&n); err != nil {
		return 0, storageError(msgCount, err)
	}
	return n, nil
}

func (s *PGStore) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := s.db.Exec(ctx, querySetRead, id, userID, true); err != nil {
		return storageError(msgMarkRead, err)
	}
	return nil
}

func (s *PGStore) MarkUnread(ctx context.Context, userID, id string) error {
	if _, err := s.db.Exec(ctx, querySetRead, id, userID, false); err != nil {
		return storageError(msgMarkUnread, err)
	}
	return nil
}

func (s *PGStore) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := s.db.Exec(ctx, queryMarkAllRead, userID); err != nil {
		return storageError(msgMarkAllRead, err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.db.Exec(ctx, queryDelete, id, userID); err != nil {
		return storageError(msgDelete, err)
	}
	return nil
}

func (s *PGStore) Insert(ctx context.Context, in NewNotification) (Notification, error) {
	out, err := s.InsertBulk(ctx, []NewNotification{in})
	if err != nil {
		return Notification{}, err
	}
	return out[0], nil
}

// InsertBulk sends the batch as parallel arrays and unnests them server-side,
// so any batch size is a single statement.
func (s *PGStore) InsertBulk(ctx context.Context, ins []NewNotification) ([]Notification, error) {
	if len(ins) == 0 {
		return []Notification{}, nil
	}

	var (
		ids      = make([]string, len(ins))
		users    = make([]string, len(ins))
		titles   = make([]string, len(ins))
		messages = make([]string, len(ins))
		types    = make([]string, len(ins))
		links    = make([]*string, len(ins))
	)
	for i, in := range ins {
		ids[i] = newID()
		users[i] = in.UserID
		titles[i] = in.Title
		messages[i] = in.Message
		types[i] = string(in.Type.OrDefault())
		links[i] = in.Link
	}

	rows, err := s.db.Query(ctx, queryInsertBulk, ids, users, titles, messages, types, links)
	if err != nil {
		return nil, insertError(err)
	}
	out, err := pgx.CollectRows(rows, scanNotification)
	if err != nil {
		return nil, insertError(err)
	}
	return out, nil
}

// ListUserIDs reads the users table owned by the host application.
func (s *PGStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, queryListUserIDs)
	if err != nil {
		return nil, storageError(msgListUsers, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storageError(msgListUsers, err)
	}
	return ids, nil
}

func insertError(err error) error {
	if pg.IsForeignKeyViolationError(err) {
		return storageError(msgInsert, &unknownUserError{cause: err})
	}
	return storageError(msgInsert, err)
}

type unknownUserError struct{ cause error }

func (e *unknownUserError) Error() string   { return ErrUnknownUser.Error() + ": " + e.cause.Error() }
func (e *unknownUserError) Unwrap() []error { return []error{ErrUnknownUser, e.cause} }

func scanNotification(row pgx.CollectableRow) (Notification, error) {
	var (
		n       Notification
		typ     string
		created time.Time
		updated time.Time
	)
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.Read, &n.Link, &created, &updated)
	n.Type = Type(typ)
	n.CreatedAt = created.UTC()
	n.UpdatedAt = updated.UTC()
	return n, err
}
