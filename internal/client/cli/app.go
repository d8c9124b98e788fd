package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/client/auth"
	"github.com/dmitrijs2005/gophdraft/internal/client/client"
	"github.com/dmitrijs2005/gophdraft/internal/client/config"
	"github.com/dmitrijs2005/gophdraft/internal/client/likes"
	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/dmitrijs2005/gophdraft/internal/client/repositories/journal"
	"github.com/dmitrijs2005/gophdraft/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophdraft/internal/client/session"
	"github.com/dmitrijs2005/gophdraft/internal/client/upload"
	"github.com/dmitrijs2005/gophdraft/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const (
	// journalRetention is how long unrecovered journal entries are kept.
	journalRetention = 30 * 24 * time.Hour
	pingInterval     = 15 * time.Second
)

var (
	ErrNoDraft   = errors.New("no open draft, use 'new', 'open' or 'recover'")
	ErrDraftOpen = errors.New("a draft is already open, 'close' it first")
)

// Deps are the collaborators of the CLI. Uploader may be nil, in which case
// images go through Backend.
type Deps struct {
	Config   *config.Config
	Backend  client.Client
	Uploader upload.ImageUploader
	Metadata metadata.Repository
	Journal  journal.Repository
	Auth     *auth.Holder
	Logger   logging.Logger

	In  io.Reader
	Out io.Writer
}

type App struct {
	cfg      *config.Config
	backend  client.Client
	uploader upload.ImageUploader
	metadata metadata.Repository
	journal  journal.Repository
	auth     *auth.Holder
	log      logging.Logger
	likes    *likes.Toggler

	reader *bufio.Reader
	out    io.Writer

	mu         sync.Mutex
	mode       Mode
	session    *session.Session
	lastStatus models.AutosaveStatus
}

func NewApp(d Deps) *App {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.Auth == nil {
		d.Auth = &auth.Holder{}
	}
	return &App{
		cfg:      d.Config,
		backend:  d.Backend,
		uploader: d.Uploader,
		metadata: d.Metadata,
		journal:  d.Journal,
		auth:     d.Auth,
		log:      d.Logger,
		likes:    likes.NewToggler(d.Backend, d.Logger),
		reader:   bufio.NewReader(d.In),
		out:      &syncWriter{w: d.Out},
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// syncWriter serializes writes of the REPL and of background autosave
// notifications.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Run restores the stored login, prunes old journal entries and runs the
// REPL until the user exits. The open draft, if any, is closed on exit.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to gophdraft (type 'help' for commands)")

	if err := a.restoreLogin(ctx); err != nil {
		a.log.Warn(ctx, "stored access token rejected", "error", err)
	}
	a.pruneJournal(ctx)
	a.announceRecoverable(ctx)

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go a.StartOnlineStatusWatcher(watchCtx, pingInterval)

	runREPL(ctx, a, a.statusLine, a.reader)

	if s := a.current(); s != nil {
		_ = s.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.Current() != nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// StartOnlineStatusWatcher pings the backend every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.probe(ctx)
	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.backend.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) current() *session.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// active returns the open draft session or ErrNoDraft.
func (a *App) active() (*session.Session, error) {
	s := a.current()
	if s == nil {
		return nil, ErrNoDraft
	}
	if s.View().State == models.StateClosed {
		a.clearSession(s)
		return nil, ErrNoDraft
	}
	return s, nil
}

func (a *App) clearSession(s *session.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == s {
		a.session = nil
	}
}

// openSession starts a draft session for the logged in user.
func (a *App) openSession(ctx context.Context, opts session.Options) (*session.Session, error) {
	if _, err := a.active(); err == nil {
		return nil, ErrDraftOpen
	}
	user := a.auth.Current()
	if user == nil {
		return nil, auth.ErrNotLoggedIn
	}

	opts.Auth = user
	opts.Journal = a.journal
	opts.Logger = a.log
	opts.OnChange = a.onChange
	if a.uploader != nil {
		opts.Uploader = a.uploader
	}
	if a.cfg != nil {
		opts.AutosaveDelay = a.cfg.AutosaveDelay
		opts.MaxImageSize = a.cfg.MaxImageSize
	}

	s, err := session.New(ctx, a.backend, opts)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.session = s
	a.lastStatus = models.AutosaveIdle
	a.mu.Unlock()

	if err := a.metadata.Set(ctx, metadata.KeyLastSession, s.Key()); err != nil {
		a.log.Warn(ctx, "remember session failed", "error", err)
	}
	return s, nil
}

// onChange reports autosave outcomes that happen in the background.
func (a *App) onChange(v session.View) {
	a.mu.Lock()
	prev := a.lastStatus
	a.lastStatus = v.Autosave
	a.mu.Unlock()

	if prev == v.Autosave || v.State == models.StateClosed {
		return
	}
	switch v.Autosave {
	case models.AutosaveSaved, models.AutosaveError:
		a.println(renderAutosave(v))
	}
}

func (a *App) statusLine() string {
	s := ""
	if u := a.auth.Current(); u != nil {
		name := u.Username()
		if name == "" {
			name = u.UserID()
		}
		s = name + " "
	}
	if m := a.getMode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	if cur := a.current(); cur != nil {
		v := cur.View()
		if v.State != models.StateClosed {
			s += " " + renderPrompt(v)
		}
	}
	return s
}
