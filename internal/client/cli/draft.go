package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/dmitrijs2005/gophdraft/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophdraft/internal/client/session"
	"github.com/dmitrijs2005/gophdraft/internal/common"
)

var ErrNotInJournal = errors.New("draft has no local copy")

func (a *App) NewDraft(ctx context.Context) error {
	if _, err := a.openSession(ctx, session.Options{}); err != nil {
		return err
	}
	a.println("New draft started. Set a 'title' and a 'body'; it is saved as you type.")
	return nil
}

func (a *App) Title(ctx context.Context, text string) error {
	s, err := a.active()
	if err != nil {
		return err
	}
	return s.Edit(models.FieldTitle, text)
}

func (a *App) Body(ctx context.Context) error {
	s, err := a.active()
	if err != nil {
		return err
	}
	text, err := GetMultiline(a.reader, "Enter the body (markdown)", a.out)
	if err != nil {
		return err
	}
	return s.Edit(models.FieldContent, text)
}

// Image uploads the file at path as the cover image. Files over the size
// limit are rejected after sniffing only their first bytes.
func (a *App) Image(ctx context.Context, path string) error {
	s, err := a.active()
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New("usage: image <path>")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	mimeType := http.DetectContentType(head[:n])

	var data []byte
	if a.cfg == nil || st.Size() <= a.cfg.MaxImageSize {
		if data, err = os.ReadFile(path); err != nil {
			return err
		}
	}

	a.println("Uploading...")
	ref, err := s.UploadImage(ctx, data, mimeType, st.Size())
	if err != nil {
		return err
	}
	a.println("Upload successful:", ref.URL)
	return nil
}

func (a *App) RemoveImage(ctx context.Context) error {
	s, err := a.active()
	if err != nil {
		return err
	}
	return s.RemoveImage()
}

func (a *App) Status(ctx context.Context) error {
	s, err := a.active()
	if err != nil {
		return err
	}
	a.println(renderView(s.View()))
	return nil
}

func (a *App) Preview(ctx context.Context) error {
	s, err := a.active()
	if err != nil {
		return err
	}
	_, err = a.out.Write(renderPreview(s.View().Fields))
	return err
}

// Save flushes pending edits now.
func (a *App) Save(ctx context.Context) error {
	s, err := a.active()
	if err != nil {
		return err
	}
	if err := s.Flush(ctx); err != nil {
		return err
	}
	a.println(renderAutosave(s.View()))
	return nil
}

func (a *App) Publish(ctx context.Context) error {
	s, err := a.active()
	if err != nil {
		return err
	}
	postID, err := s.Publish(ctx)
	if err != nil {
		return err
	}
	a.clearSession(s)
	a.likes.Seed(postID, models.LikeState{})
	a.println("Published as post", postID)
	return nil
}

// CloseDraft closes the open draft, asking what to do with unsaved edits.
func (a *App) CloseDraft(ctx context.Context) error {
	s, err := a.active()
	if err != nil {
		return err
	}

	prompt, closed := s.RequestClose()
	if !closed {
		key, err := GetChoice(a.reader, "The draft has unsaved changes. (d)iscard it, (s)ave and close, (k)eep editing?", "dsk", a.out)
		if err != nil {
			return err
		}
		choice := session.ChoiceKeepEditing
		switch key {
		case 'd':
			choice = session.ChoiceDiscard
		case 's':
			choice = session.ChoiceSaveAndClose
		}
		if err := prompt.Resolve(ctx, choice); err != nil {
			if s.View().State == models.StateClosed {
				a.clearSession(s)
			}
			return err
		}
	}

	v := s.View()
	if v.State != models.StateClosed {
		return nil
	}
	a.clearSession(s)
	a.println("Draft closed:", v.CloseReason)
	return nil
}

// Recover lists journal entries, or reopens the one stored under key.
// "last" names the most recently opened session.
func (a *App) Recover(ctx context.Context, key string) error {
	if key == "" {
		return a.listJournal(ctx)
	}
	if _, err := a.active(); err == nil {
		return ErrDraftOpen
	}

	if key == "last" {
		last, ok, err := a.metadata.Get(ctx, metadata.KeyLastSession)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInJournal
		}
		key = last
	}

	e, err := a.journal.Take(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: %s", ErrNotInJournal, key)
	}
	if err != nil {
		return err
	}
	return a.resume(ctx, e)
}

// Open reopens a draft by its backend id from its local copy.
func (a *App) Open(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("usage: open <draft-id>")
	}
	entries, err := a.journal.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if string(e.DraftID) == id {
			return a.Recover(ctx, e.SessionKey)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotInJournal, id)
}

// resume opens a session for a journal entry and replays its fields as
// edits, so the recovered text is saved again.
func (a *App) resume(ctx context.Context, e *models.JournalEntry) error {
	s, err := a.openSession(ctx, session.Options{DraftID: e.DraftID})
	if err != nil {
		if perr := a.journal.Save(ctx, e); perr != nil {
			a.log.Warn(ctx, "restoring journal entry failed", "error", perr)
		}
		return err
	}

	f := e.Fields()
	if err := s.Edit(models.FieldContent, f.Content); err != nil {
		return err
	}
	if err := s.Edit(models.FieldTitle, f.Title); err != nil {
		return err
	}
	if f.Image != nil {
		if err := s.Edit(models.FieldImage, f.Image.URL); err != nil {
			return err
		}
	}

	a.println(fmt.Sprintf("Recovered %q", orUntitled(f.Title)))
	return nil
}

func (a *App) listJournal(ctx context.Context) error {
	entries, err := a.journal.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.println("Nothing to recover")
		return nil
	}
	for _, e := range entries {
		id := string(e.DraftID)
		if id == "" {
			id = "-"
		}
		a.println(fmt.Sprintf("%s  draft=%s  %q  %s", e.SessionKey, id, orUntitled(e.Title), e.UpdatedAt.Format(time.DateTime)))
	}
	a.println("Use 'recover <key>' or 'recover last'")
	return nil
}

func (a *App) pruneJournal(ctx context.Context) {
	n, err := a.journal.Prune(ctx, time.Now().Add(-journalRetention))
	if err != nil {
		a.log.Warn(ctx, "journal prune failed", "error", err)
		return
	}
	if n > 0 {
		a.log.Info(ctx, "pruned old journal entries", "count", n)
	}
}

func (a *App) announceRecoverable(ctx context.Context) {
	entries, err := a.journal.List(ctx)
	if err != nil || len(entries) == 0 {
		return
	}
	a.println(fmt.Sprintf("%d unsaved draft(s) in the local journal, type 'recover' to list them", len(entries)))
}

func orUntitled(title string) string {
	if title == "" {
		return models.UntitledDraft
	}
	return title
}
