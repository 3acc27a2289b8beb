package notifications

import "errors"

var (
	// ErrStorage matches every error caused by the backing store.
	ErrStorage = errors.New("notification storage failure")
	// ErrUserRequired is returned when an operation is called without an owner.
	ErrUserRequired = errors.New("user id is required")
	// ErrUnknownUser is returned when inserting for a user that does not exist.
	ErrUnknownUser = errors.New("unknown user")
)

// Stable messages surfaced to clients for storage failures.
const (
	msgList        = "Failed to fetch notifications"
	msgCount       = "Failed to count unread notifications"
	msgMarkRead    = "Failed to mark notification as read"
	msgMarkUnread  = "Failed to mark notification as unread"
	msgMarkAllRead = "Failed to mark all notifications as read"
	msgDelete      = "Failed to delete notification"
	msgInsert      = "Failed to create notification"
	msgListUsers   = "Failed to fetch users"
	msgRemoveUser  = "Failed to remove user"
)

// StorageError hides a driver error behind a stable, client-safe message.
// errors.Is(err, ErrStorage) holds for every StorageError.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

func storageError(msg string, err error) error {
	return &StorageError{Message: msg, Err: err}
}

// PublicMessage returns the stable message of a storage error, or an empty
// string when err is not one.
func PublicMessage(err error) string {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}
