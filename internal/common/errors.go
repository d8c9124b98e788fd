package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
