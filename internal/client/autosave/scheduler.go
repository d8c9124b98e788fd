// Package autosave turns bursts of edits into a single deferred save.
//
// A Scheduler is a debounce timer bound to one save callback. Arm restarts
// the inactivity window; when the window elapses the callback runs in the
// background. At most one callback runs at a time: a fire that happens while
// a save is outstanding is remembered and replayed as soon as that save
// returns, so edits made during a save are neither lost nor sent in
// parallel with it.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/logging"
)

// DefaultDelay is the inactivity window used when none is configured.
const DefaultDelay = 3 * time.Second

var ErrClosed = errors.New("autosave scheduler closed")

// SaveFunc persists the current state. It is never called concurrently with
// itself by the same Scheduler.
type SaveFunc func(ctx context.Context) error

type stopper interface {
	Stop() bool
}

// afterFunc is a seam over time.AfterFunc.
type afterFunc func(d time.Duration, f func()) stopper

func realAfter(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

type Scheduler struct {
	ctx   context.Context
	delay time.Duration
	save  SaveFunc
	log   logging.Logger
	after afterFunc

	mu     sync.Mutex
	timer  stopper
	gen    uint64
	rerun  bool
	closed bool

	// busy holds a token while a save runs.
	busy chan struct{}
}

// New creates a Scheduler. Saves started by the timer run with ctx.
func New(ctx context.Context, delay time.Duration, save SaveFunc, log logging.Logger) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Scheduler{
		ctx:   ctx,
		delay: delay,
		save:  save,
		log:   log,
		after: realAfter,
		busy:  make(chan struct{}, 1),
	}
}

// Arm (re)starts the inactivity timer, replacing any armed one.
func (s *Scheduler) Arm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.stopLocked()
	gen := s.gen
	s.timer = s.after(s.delay, func() { s.fire(gen) })
}

// Trigger cancels the timer and starts a save right away without waiting
// for it. If a save is outstanding, another one follows it.
func (s *Scheduler) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.stopLocked()
	s.startLocked()
}

// Cancel stops the armed timer, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Armed reports whether a timer is pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Flush cancels the timer and runs the save synchronously once any
// outstanding save has returned.
func (s *Scheduler) Flush(ctx context.Context) error {
	return s.Exclusive(ctx, s.save)
}

// Exclusive cancels the timer, waits for any outstanding save and runs fn
// while no save can start. Fires that happen meanwhile are replayed after fn
// returns.
func (s *Scheduler) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.stopLocked()
	s.mu.Unlock()

	select {
	case s.busy <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer s.release()

	return fn(ctx)
}

// Close cancels the timer and drops any pending replay. A save already
// running is left to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.rerun = false
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// invalidates callbacks of timers that already fired but have not
	// taken the lock yet
	s.gen++
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen {
		return
	}
	s.timer = nil
	s.startLocked()
}

func (s *Scheduler) startLocked() {
	select {
	case s.busy <- struct{}{}:
		go s.execute()
	default:
		s.rerun = true
	}
}

func (s *Scheduler) execute() {
	if err := s.save(s.ctx); err != nil {
		s.log.Debug(s.ctx, "scheduled save returned error", "error", err)
	}
	s.release()
}

// release hands the busy token to a replayed save or gives it back.
func (s *Scheduler) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rerun && !s.closed {
		s.rerun = false
		go s.execute()
		return
	}
	s.rerun = false
	<-s.busy
}
