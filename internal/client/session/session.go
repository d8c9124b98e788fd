// Package session implements the lifecycle of one draft being edited.
//
// A Session owns a DraftRecord and turns user edits into backend calls:
// the first edit with text creates the draft right away, later edits are
// debounced into updates by an autosave.Scheduler, an uploaded cover image
// is saved immediately, and Publish, Discard and the close prompt run the
// terminal protocols. Saves never overlap. Each save is tagged with the edit
// counter at send time and acknowledgements older than the newest applied
// one are ignored.
//
// Once closed, a session issues no further backend calls and results of
// calls still in flight are dropped.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/client/autosave"
	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/dmitrijs2005/gophdraft/internal/client/upload"
	"github.com/dmitrijs2005/gophdraft/internal/logging"
	"github.com/google/uuid"
)

// Backend is the part of the draft API a session calls.
type Backend interface {
	CreateDraft(ctx context.Context, fields models.DraftFields) (models.DraftID, error)
	UpdateDraft(ctx context.Context, id models.DraftID, patch models.DraftPatch) error
	PublishDraft(ctx context.Context, id models.DraftID, patch *models.DraftPatch) (models.PostID, error)
	DiscardDraft(ctx context.Context, id models.DraftID) error
}

// Journal keeps a local copy of unsaved drafts.
type Journal interface {
	Save(ctx context.Context, e *models.JournalEntry) error
	Delete(ctx context.Context, sessionKey string) error
}

// AuthContext is the reference counted user session a draft session holds
// while open.
type AuthContext interface {
	Retain() error
	Release()
}

type Options struct {
	// DraftID and Initial open an existing draft. Initial is treated as the
	// state the backend already holds.
	DraftID models.DraftID
	Initial models.DraftFields

	// SessionKey identifies the session in the journal. Generated when empty.
	SessionKey string

	AutosaveDelay time.Duration
	MaxImageSize  int64

	// Uploader stores images. When nil the backend is used if it can upload.
	Uploader upload.ImageUploader
	Journal  Journal
	Auth     AuthContext
	Logger   logging.Logger

	// OnChange is called after every state change, possibly from another
	// goroutine.
	OnChange func(View)
}

type Session struct {
	backend  Backend
	journal  Journal
	auth     AuthContext
	log      logging.Logger
	onChange func(View)
	key      string

	// ctx bounds background saves; cancelled on close.
	ctx    context.Context
	cancel context.CancelFunc

	scheduler *autosave.Scheduler
	uploads   *upload.Coordinator

	mu       sync.Mutex
	record   *models.DraftRecord
	state    models.SessionState
	reason   models.CloseReason
	status   models.AutosaveStatus
	seq      uint64
	applied  uint64
	creating bool
	postID   models.PostID
	lastErr  error
}

// New opens a draft session. The auth context, if any, is retained until
// the session closes.
func New(ctx context.Context, backend Backend, opts Options) (*Session, error) {
	if opts.Auth != nil {
		if err := opts.Auth.Retain(); err != nil {
			return nil, fmt.Errorf("open draft session: %w", err)
		}
	}

	key := opts.SessionKey
	if key == "" {
		key = uuid.NewString()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	log = log.With("session", key)

	lifetime, cancel := context.WithCancel(ctx)
	s := &Session{
		backend:  backend,
		journal:  opts.Journal,
		auth:     opts.Auth,
		log:      log,
		onChange: opts.OnChange,
		key:      key,
		ctx:      lifetime,
		cancel:   cancel,
		record:   models.NewDraftRecord(opts.DraftID, opts.Initial),
		state:    models.StateEmpty,
	}
	if opts.DraftID != "" || opts.Initial.HasText() || opts.Initial.Image != nil {
		s.state = models.StateDrafting
	}

	s.scheduler = autosave.New(lifetime, opts.AutosaveDelay, s.persist, log)

	uploader := opts.Uploader
	if uploader == nil {
		uploader, _ = backend.(upload.ImageUploader)
	}
	if uploader != nil {
		s.uploads = upload.New(uploader, opts.MaxImageSize, log)
		s.uploads.OnAttach(s.attachImage)
		s.uploads.OnStatus(func(models.ImageUploadStatus) {
			if !s.closed() {
				s.notify()
			}
		})
	}

	log.Info(ctx, "draft session opened", "draft_id", opts.DraftID)
	return s, nil
}

// Key returns the journal key of the session.
func (s *Session) Key() string { return s.key }

// Edit sets a field. Title and content take text; the image field takes an
// image URL, where "" removes the image.
func (s *Session) Edit(field models.Field, value string) error {
	var apply func(r *models.DraftRecord)
	switch field {
	case models.FieldTitle:
		apply = func(r *models.DraftRecord) { r.SetTitle(value) }
	case models.FieldContent:
		apply = func(r *models.DraftRecord) { r.SetContent(value) }
	case models.FieldImage:
		apply = func(r *models.DraftRecord) {
			if value == "" {
				r.SetImage(nil)
				return
			}
			r.SetImage(&models.ImageRef{URL: value})
		}
	default:
		return fmt.Errorf("%w: unknown field %q", ErrValidation, field)
	}
	return s.mutate(apply)
}

// RemoveImage clears the cover image and resets the upload status.
func (s *Session) RemoveImage() error {
	if err := s.mutate(func(r *models.DraftRecord) { r.SetImage(nil) }); err != nil {
		return err
	}
	if s.uploads != nil {
		s.uploads.Reset()
	}
	return nil
}

func (s *Session) mutate(apply func(r *models.DraftRecord)) error {
	s.mu.Lock()
	if s.state == models.StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	apply(s.record)
	s.seq++
	s.state = models.StateDrafting
	next := s.scheduleLocked()
	entry := s.journalEntryLocked()
	s.mu.Unlock()

	next()
	s.saveJournal(entry)
	s.notify()
	return nil
}

// scheduleLocked decides how the latest edit reaches the backend and
// returns the scheduler call to make once the lock is released.
func (s *Session) scheduleLocked() func() {
	if !s.record.HasID() {
		if s.creating {
			// the follow-up update goes out after the create settles
			return s.scheduler.Arm
		}
		if s.record.Fields().HasText() {
			s.creating = true
			return s.scheduler.Trigger
		}
		return func() {}
	}

	if s.record.Dirty() {
		// a save in flight keeps Saving; settle moves on to Pending
		if s.status != models.AutosaveSaving {
			s.status = models.AutosavePending
		}
		return s.scheduler.Arm
	}
	if s.status == models.AutosavePending {
		s.status = models.AutosaveSaved
	}
	return s.scheduler.Cancel
}

// UploadImage validates and uploads a cover image. On success the image is
// attached and, if the draft exists, saved before UploadImage returns.
func (s *Session) UploadImage(ctx context.Context, data []byte, mimeType string, size int64) (models.ImageRef, error) {
	if s.closed() {
		return models.ImageRef{}, ErrClosed
	}
	if s.uploads == nil {
		return models.ImageRef{}, ErrNoUploader
	}
	return s.uploads.Upload(ctx, data, mimeType, size)
}

func (s *Session) attachImage(ctx context.Context, ref models.ImageRef) {
	s.mu.Lock()
	if s.state == models.StateClosed {
		s.mu.Unlock()
		return
	}
	s.record.SetImage(&ref)
	s.seq++
	s.state = models.StateDrafting
	hasID := s.record.HasID()
	var next func()
	if !hasID {
		next = s.scheduleLocked()
	}
	entry := s.journalEntryLocked()
	s.mu.Unlock()

	s.saveJournal(entry)
	if hasID {
		if err := s.scheduler.Flush(ctx); err != nil {
			s.log.Warn(ctx, "saving uploaded image failed", "url", ref.URL, "error", err)
		}
	} else {
		next()
	}
	s.notify()
}

// Flush saves pending edits now and returns once the save settled. Without
// an identity it creates the draft if there is text to save.
func (s *Session) Flush(ctx context.Context) error {
	if s.closed() {
		return ErrClosed
	}
	return s.scheduler.Flush(ctx)
}

// View returns the current projection.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		State:       s.state,
		CloseReason: s.reason,
		DraftID:     s.record.ID(),
		PostID:      s.postID,
		Autosave:    s.status,
		Dirty:       s.record.Dirty(),
		Fields:      s.record.Fields(),
		LastErr:     s.lastErr,
	}
	if s.uploads != nil {
		v.Upload = s.uploads.Status()
	}
	return v
}

func (s *Session) notify() {
	if s.onChange == nil {
		return
	}
	s.onChange(s.View())
}

func (s *Session) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == models.StateClosed
}

func (s *Session) journalEntryLocked() *models.JournalEntry {
	if s.journal == nil {
		return nil
	}
	f := s.record.Fields()
	return &models.JournalEntry{
		SessionKey: s.key,
		DraftID:    s.record.ID(),
		Title:      f.Title,
		Content:    f.Content,
		ImageURL:   f.ImageURL(),
		UpdatedAt:  time.Now(),
	}
}

func (s *Session) saveJournal(e *models.JournalEntry) {
	if e == nil {
		return
	}
	if err := s.journal.Save(context.Background(), e); err != nil {
		s.log.Warn(s.ctx, "journal write failed", "error", err)
	}
}

func (s *Session) deleteJournal() {
	if s.journal == nil {
		return
	}
	if err := s.journal.Delete(context.Background(), s.key); err != nil {
		s.log.Warn(context.Background(), "journal delete failed", "error", err)
	}
}
