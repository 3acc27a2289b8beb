package notifications

import (
	"context"

	"github.com/google/uuid"
)

// Store persists notifications. Every read and write is scoped to the
// owning user: an id that belongs to someone else behaves exactly like an
// id that does not exist, and mutating it is a silent no-op.
type Store interface {
	// List returns the caller's newest notifications, at most ListLimit.
	List(ctx context.Context, userID string) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkUnread(ctx context.Context, userID, id string) error
	// MarkAllRead is idempotent.
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, id string) error
	// Insert assigns the id and timestamps and returns the stored record.
	Insert(ctx context.Context, n NewNotification) (Notification, error)
	// InsertBulk writes all rows in one round trip. An empty batch returns
	// an empty result without touching storage.
	InsertBulk(ctx context.Context, ns []NewNotification) ([]Notification, error)
}

// UserLister enumerates every user id. Broadcast uses it.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// newID returns a time-ordered UUIDv7. Ids from one process increase
// monotonically, so the id tie-break in List follows insertion order when
// two rows share a created_at.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
