package notifications

import (
	"errors"
	"net/http"

	"github.com/tracepanic/compyle/binder"
	"github.com/tracepanic/compyle/handler"
	"github.com/tracepanic/compyle/pkg/broadcast"
	notify "github.com/tracepanic/compyle/pkg/notifications"
	"github.com/tracepanic/compyle/pkg/session"
)

// ErrStorageFailure is the HTTP face of notify.ErrStorage.
var ErrStorageFailure = handler.NewHTTPError(http.StatusInternalServerError, "storage_failure")

func translateError(err error) error {
	switch {
	case errors.Is(err, notify.ErrStorage):
		return errors.Join(ErrStorageFailure.WithMessage(notify.PublicMessage(err)), err)
	case errors.Is(err, notify.ErrUserRequired), errors.Is(err, session.ErrUnauthorized):
		return errors.Join(handler.ErrUnauthorized, err)
	case errors.Is(err, ErrShuttingDown), errors.Is(err, broadcast.ErrBusClosed):
		return errors.Join(handler.ErrServiceUnavailable, err)
	case errors.Is(err, binder.ErrMissingParam), errors.Is(err, binder.ErrInvalidValue):
		return errors.Join(handler.ErrBadRequest.WithMessage("Invalid notification id"), err)
	}
	return err
}
