package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
)

// Publish validates the draft, creates it if needed, flushes pending edits
// and publishes it. On success the session closes; on failure it stays open
// with the draft intact.
func (s *Session) Publish(ctx context.Context) (models.PostID, error) {
	s.mu.Lock()
	if s.state == models.StateClosed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	fields := s.record.Fields()
	s.mu.Unlock()

	if strings.TrimSpace(fields.Title) == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(fields.Content) == "" {
		return "", fmt.Errorf("%w: content is required", ErrValidation)
	}

	var postID models.PostID
	err := s.scheduler.Exclusive(ctx, func(ctx context.Context) error {
		if err := s.persist(ctx); err != nil {
			return err
		}

		s.mu.Lock()
		if s.state == models.StateClosed {
			s.mu.Unlock()
			return ErrClosed
		}
		id := s.record.ID()
		if id == "" {
			s.mu.Unlock()
			return ErrNotPersisted
		}
		var patch *models.DraftPatch
		if s.record.Dirty() {
			f := s.record.Fields()
			f.Title = strings.TrimSpace(f.Title)
			f.Content = strings.TrimSpace(f.Content)
			p := models.PatchSince(s.record.Baseline(), f, s.seq)
			patch = &p
		}
		s.mu.Unlock()

		pid, err := s.backend.PublishDraft(ctx, id, patch)
		if err != nil {
			s.mu.Lock()
			s.lastErr = err
			s.mu.Unlock()
			s.log.Error(ctx, "publish failed", "draft_id", id, "error", err)
			return &NetworkError{Op: opPublish, Err: err}
		}
		postID = pid
		return nil
	})
	if err != nil {
		s.notify()
		return "", err
	}

	s.mu.Lock()
	s.postID = postID
	s.mu.Unlock()
	s.log.Info(ctx, "draft published", "post_id", postID)
	s.close(models.ClosedPublished)
	return postID, nil
}

// Discard deletes the draft on the backend and closes the session. The
// session closes even when the call fails; the failure is still returned.
func (s *Session) Discard(ctx context.Context) error {
	s.mu.Lock()
	if s.state == models.StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	id := s.record.ID()
	s.mu.Unlock()

	if id == "" {
		return ErrNotPersisted
	}

	err := s.scheduler.Exclusive(ctx, func(ctx context.Context) error {
		return s.backend.DiscardDraft(ctx, id)
	})
	if err != nil {
		s.log.Warn(ctx, "discard failed, closing anyway", "draft_id", id, "error", err)
		err = &NetworkError{Op: opDiscard, Err: err}
	}
	s.close(models.ClosedDiscarded)
	return err
}

// Choice is the answer to a close prompt.
type Choice int

const (
	ChoiceKeepEditing Choice = iota
	ChoiceDiscard
	ChoiceSaveAndClose
)

func (c Choice) String() string {
	switch c {
	case ChoiceDiscard:
		return "discard"
	case ChoiceSaveAndClose:
		return "save"
	default:
		return "keep editing"
	}
}

// Prompt is a pending close decision for a saved draft with unsaved edits.
type Prompt struct {
	s *Session

	mu       sync.Mutex
	resolved bool
}

// RequestClose closes the session right away when nothing would be lost,
// that is when the draft was never created or has no unsaved edits.
// Otherwise it returns a Prompt and leaves the session open.
func (s *Session) RequestClose() (*Prompt, bool) {
	s.mu.Lock()
	if s.state == models.StateClosed {
		s.mu.Unlock()
		return nil, true
	}
	needsPrompt := s.record.HasID() && s.record.Dirty()
	s.mu.Unlock()

	if !needsPrompt {
		s.close(models.ClosedDismissed)
		return nil, true
	}
	return &Prompt{s: s}, false
}

// Resolve applies the choice. Save-and-close closes the session even if
// the save fails and returns that failure.
func (p *Prompt) Resolve(ctx context.Context, c Choice) error {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return ErrPromptResolved
	}
	p.resolved = true
	p.mu.Unlock()

	switch c {
	case ChoiceDiscard:
		return p.s.Discard(ctx)
	case ChoiceSaveAndClose:
		if p.s.closed() {
			return ErrClosed
		}
		err := p.s.scheduler.Flush(ctx)
		p.s.close(models.ClosedSaved)
		return err
	default:
		return nil
	}
}

// Close tears the session down without any backend call. Pending edits
// that were not saved stay in the journal.
func (s *Session) Close() error {
	s.close(models.ClosedDismissed)
	return nil
}

func (s *Session) close(reason models.CloseReason) {
	s.mu.Lock()
	if s.state == models.StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = models.StateClosed
	s.reason = reason
	id := s.record.ID()
	keepJournal := s.record.Dirty() && (reason == models.ClosedSaved || (reason == models.ClosedDismissed && id != ""))
	s.mu.Unlock()

	s.scheduler.Close()
	s.cancel()
	if !keepJournal {
		s.deleteJournal()
	}
	if s.auth != nil {
		s.auth.Release()
	}

	s.log.Info(context.Background(), "draft session closed", "reason", reason, "draft_id", id)
	s.notify()
}
