package client

import (
	"context"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
)

// Client is the backend draft API.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	CreateDraft(ctx context.Context, fields models.DraftFields) (models.DraftID, error)
	// UpdateDraft applies a partial update. Applying the same tag twice has
	// the same effect as applying it once.
	UpdateDraft(ctx context.Context, id models.DraftID, patch models.DraftPatch) error
	// PublishDraft publishes the draft. A nil patch publishes what the
	// backend already holds.
	PublishDraft(ctx context.Context, id models.DraftID, patch *models.DraftPatch) (models.PostID, error)
	DiscardDraft(ctx context.Context, id models.DraftID) error
	UploadImage(ctx context.Context, data []byte, mimeType string) (models.ImageRef, error)
	ToggleLike(ctx context.Context, id models.PostID) (models.LikeState, error)
}

// TokenSource provides the access token attached to every request.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }
