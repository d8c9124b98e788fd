package journal

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
)

// Repository stores journal entries.
type Repository interface {
	// Save inserts or replaces the entry of a session.
	Save(ctx context.Context, e *models.JournalEntry) error

	// Get returns the entry of a session or common.ErrorNotFound.
	Get(ctx context.Context, sessionKey string) (*models.JournalEntry, error)

	// List returns all entries, most recently updated first.
	List(ctx context.Context) ([]*models.JournalEntry, error)

	// Delete removes the entry of a session. Deleting a missing entry is not an error.
	Delete(ctx context.Context, sessionKey string) error

	// Take returns and removes an entry atomically.
	Take(ctx context.Context, sessionKey string) (*models.JournalEntry, error)

	// Prune removes entries last updated before t and returns how many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}
