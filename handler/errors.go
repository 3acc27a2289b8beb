package handler

import (
	"errors"
	"net/http"
)

var (
	// ErrNilResponse is reported when a handler returns a nil Response.
	ErrNilResponse = errors.New("handler returned nil response")
	// ErrStreamingUnsupported is reported when the writer cannot flush.
	ErrStreamingUnsupported = errors.New("response writer does not support streaming")
	// ErrStreamAborted wraps errors raised after an event stream has sent its
	// headers. Error handlers log them and write nothing.
	ErrStreamAborted = errors.New("event stream aborted")
)

// HTTPError carries a status code, a machine-readable key and an optional
// client-facing message.
type HTTPError struct {
	Code    int
	Key     string
	Message string
}

func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Key + ": " + e.Message
	}
	return e.Key
}

// WithMessage returns a copy of e with msg as client-facing message.
func (e HTTPError) WithMessage(msg string) HTTPError {
	e.Message = msg
	return e
}

func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized", Message: "Unauthorized"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrUnprocessableEntity = HTTPError{Code: http.StatusUnprocessableEntity, Key: "validation_error"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrServiceUnavailable  = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)
