package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrPermissionDeny = errors.New("permission denied")
	ErrUnauthorized   = errors.New("session expired")
	ErrTransport      = errors.New("remote api unreachable")
	ErrRemote         = errors.New("remote api rejected request")
	ErrSubmitInFlight = errors.New("submit already in progress")
	ErrTooManyFiles   = errors.New("too many files")
	ErrNotInPalette   = errors.New("color not in palette")
)

// RemoteError carries the message the API returned with an error envelope.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return ErrRemote }
