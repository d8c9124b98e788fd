package session

import (
	"context"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
)

const (
	opCreate  = "create"
	opUpdate  = "update"
	opPublish = "publish"
	opDiscard = "discard"
)

// persist is the scheduler's save callback. It creates the draft when it has
// no identity yet and otherwise sends the current fields as an update. The
// scheduler guarantees it never runs concurrently with itself.
func (s *Session) persist(ctx context.Context) error {
	s.mu.Lock()
	if s.state == models.StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}

	id := s.record.ID()
	snap := s.record.Fields()
	base := s.record.Baseline()
	tag := s.seq
	op := opUpdate
	if id == "" {
		if !snap.HasText() {
			s.creating = false
			s.mu.Unlock()
			return nil
		}
		op = opCreate
		s.creating = true
	} else if !s.record.Dirty() {
		s.mu.Unlock()
		return nil
	}
	s.status = models.AutosaveSaving
	s.mu.Unlock()
	s.notify()

	var (
		newID models.DraftID
		err   error
	)
	if op == opCreate {
		newID, err = s.backend.CreateDraft(ctx, snap.WithPlaceholders())
	} else {
		err = s.backend.UpdateDraft(ctx, id, models.PatchSince(base, snap.WithPlaceholders(), tag))
	}
	return s.settle(ctx, op, newID, snap, tag, err)
}

// settle applies the outcome of a create or update sent at edit counter tag.
func (s *Session) settle(ctx context.Context, op string, newID models.DraftID, snap models.DraftFields, tag uint64, callErr error) error {
	s.mu.Lock()
	if op == opCreate {
		s.creating = false
	}

	if s.state == models.StateClosed {
		s.mu.Unlock()
		if op == opCreate && callErr == nil {
			s.log.Warn(ctx, "draft created after session closed", "draft_id", newID)
		}
		return nil
	}

	if callErr != nil {
		s.status = models.AutosaveError
		s.lastErr = callErr
		id := s.record.ID()
		s.mu.Unlock()

		s.log.Error(ctx, "autosave failed", "op", op, "draft_id", id, "tag", tag, "error", callErr)
		s.notify()
		return &NetworkError{Op: op, Err: callErr}
	}

	if tag < s.applied {
		applied := s.applied
		if s.status == models.AutosaveSaving {
			s.status = models.AutosaveSaved
			if s.record.Dirty() {
				s.status = models.AutosavePending
			}
		}
		s.mu.Unlock()
		s.log.Debug(ctx, "stale save response ignored", "op", op, "tag", tag, "applied", applied)
		return nil
	}

	s.applied = tag
	if op == opCreate {
		s.record.AssignID(newID)
	}
	s.record.Acknowledge(snap)
	s.lastErr = nil

	var entry *models.JournalEntry
	dirty := s.record.Dirty()
	if dirty {
		s.status = models.AutosavePending
		entry = s.journalEntryLocked()
	} else {
		s.status = models.AutosaveSaved
	}
	id := s.record.ID()
	s.mu.Unlock()

	s.log.Debug(ctx, "draft saved", "op", op, "draft_id", id, "tag", tag)
	if dirty {
		s.saveJournal(entry)
	} else {
		s.deleteJournal()
	}
	s.notify()
	return nil
}
