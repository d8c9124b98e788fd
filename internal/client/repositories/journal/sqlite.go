package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/dmitrijs2005/gophdraft/internal/common"
	"github.com/dmitrijs2005/gophdraft/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `session_key, draft_id, title, content, image_url, updated_at`

func (r *SQLiteRepository) Save(ctx context.Context, e *models.JournalEntry) error {
	updated := e.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	query := `INSERT INTO draft_journal (session_key, draft_id, title, content, image_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_key) DO UPDATE SET
			draft_id = excluded.draft_id,
			title = excluded.title,
			content = excluded.content,
			image_url = excluded.image_url,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, e.SessionKey, string(e.DraftID), e.Title, e.Content, e.ImageURL, updated.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, sessionKey string) (*models.JournalEntry, error) {
	return get(ctx, r.db, sessionKey)
}

func get(ctx context.Context, db dbx.DBTX, sessionKey string) (*models.JournalEntry, error) {
	row := db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM draft_journal WHERE session_key = ?`, sessionKey)
	e, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.JournalEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM draft_journal ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var result []*models.JournalEntry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal entries: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, sessionKey string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM draft_journal WHERE session_key = ?`, sessionKey); err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Take(ctx context.Context, sessionKey string) (*models.JournalEntry, error) {
	var e *models.JournalEntry
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		e, err = get(ctx, tx, sessionKey)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM draft_journal WHERE session_key = ?`, sessionKey)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *SQLiteRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM draft_journal WHERE updated_at < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.JournalEntry, error) {
	var (
		e       models.JournalEntry
		draftID string
		updated int64
	)
	if err := s.Scan(&e.SessionKey, &draftID, &e.Title, &e.Content, &e.ImageURL, &updated); err != nil {
		return nil, err
	}
	e.DraftID = models.DraftID(draftID)
	e.UpdatedAt = time.Unix(0, updated)
	return &e, nil
}
