package client

import "errors"

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("draft not found")
	ErrBadResponse           = errors.New("malformed server response")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
