package notifyclient

import "errors"

var (
	ErrUnauthorized     = errors.New("notifyclient: unauthorized")
	ErrRequestFailed    = errors.New("notifyclient: request failed")
	ErrUnexpectedStatus = errors.New("notifyclient: unexpected status")
	ErrStreamClosed     = errors.New("notifyclient: stream closed by server")
)

// ServerError is the decoded error envelope of a failed response.
type ServerError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return "notifyclient: " + e.Code + ": " + e.Message
	}
	return "notifyclient: " + e.Code
}

func (e *ServerError) Unwrap() error {
	return ErrUnexpectedStatus
}
