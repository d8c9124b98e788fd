package session

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a draft cannot be published as is.
	// It never reaches the network.
	ErrValidation = errors.New("validation error")

	ErrClosed         = errors.New("draft session closed")
	ErrNotPersisted   = errors.New("draft has not been saved yet")
	ErrNoUploader     = errors.New("no image uploader configured")
	ErrPromptResolved = errors.New("close prompt already resolved")
)

// NetworkError reports a failed backend call. Op names the call: create,
// update, publish or discard.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s draft: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
