// Package metadata is a small local key/value store for client settings
// such as the persisted access token.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyAccessToken = "access_token"
	KeyLastSession = "last_session"
)

type Repository interface {
	// Get returns the value of key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
