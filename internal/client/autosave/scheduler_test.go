package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ---- manual timers ----

type manualTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
}

func (m *manualTimer) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := !m.stopped
	m.stopped = true
	return was
}

type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (c *manualClock) after(_ time.Duration, f func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every callback, including the ones of stopped timers, the way
// a timer that raced with Stop would.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

func (c *manualClock) live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		t.mu.Lock()
		if !t.stopped {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

// ---- save recorder ----

type recorder struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	gate     chan struct{}
	done     chan struct{}
	err      error
}

func newRecorder(blocking bool) *recorder {
	r := &recorder{done: make(chan struct{}, 16)}
	if blocking {
		r.gate = make(chan struct{})
	}
	return r
}

func (r *recorder) save(ctx context.Context) error {
	n := r.inFlight.Add(1)
	for {
		m := r.maxSeen.Load()
		if n <= m || r.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	r.calls.Add(1)
	if r.gate != nil {
		<-r.gate
	}
	r.inFlight.Add(-1)
	r.done <- struct{}{}
	return r.err
}

func waitSaves(t *testing.T, r *recorder, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for save %d of %d", i+1, n)
		}
	}
}

func newManual(t *testing.T, r *recorder) (*Scheduler, *manualClock) {
	t.Helper()
	clock := &manualClock{}
	s := New(context.Background(), time.Hour, r.save, nil)
	s.after = clock.after
	t.Cleanup(s.Close)
	return s, clock
}

// ---- tests ----

func TestScheduler_DebounceCoalescesBurst(t *testing.T) {
	r := newRecorder(false)
	s, clock := newManual(t, r)

	for i := 0; i < 10; i++ {
		s.Arm()
	}
	require.Equal(t, 1, clock.live(), "only the last timer stays armed")
	require.True(t, s.Armed())

	clock.fireAll()
	waitSaves(t, r, 1)

	require.Never(t, func() bool { return r.calls.Load() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
	require.False(t, s.Armed())
}

func TestScheduler_CancelPreventsFire(t *testing.T) {
	r := newRecorder(false)
	s, clock := newManual(t, r)

	s.Arm()
	s.Cancel()
	require.False(t, s.Armed())

	clock.fireAll()
	require.Never(t, func() bool { return r.calls.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestScheduler_FireDuringSaveReplaysOnce(t *testing.T) {
	r := newRecorder(true)
	s, _ := newManual(t, r)

	s.Trigger()
	require.Eventually(t, func() bool { return r.inFlight.Load() == 1 }, time.Second, time.Millisecond)

	// several fires while the first save is outstanding
	s.Trigger()
	s.Trigger()
	s.Trigger()

	r.gate <- struct{}{}
	waitSaves(t, r, 1)

	require.Eventually(t, func() bool { return r.inFlight.Load() == 1 }, time.Second, time.Millisecond)
	r.gate <- struct{}{}
	waitSaves(t, r, 1)

	require.Never(t, func() bool { return r.calls.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
	require.EqualValues(t, 1, r.maxSeen.Load(), "saves must never overlap")
}

func TestScheduler_FlushWaitsForOutstandingSave(t *testing.T) {
	r := newRecorder(true)
	s, _ := newManual(t, r)

	s.Trigger()
	require.Eventually(t, func() bool { return r.inFlight.Load() == 1 }, time.Second, time.Millisecond)

	flushed := make(chan error, 1)
	go func() { flushed <- s.Flush(context.Background()) }()

	select {
	case <-flushed:
		t.Fatal("flush must wait for the outstanding save")
	case <-time.After(30 * time.Millisecond):
	}

	r.gate <- struct{}{}
	waitSaves(t, r, 1)
	r.gate <- struct{}{}
	waitSaves(t, r, 1)

	require.NoError(t, <-flushed)
	require.EqualValues(t, 2, r.calls.Load())
	require.EqualValues(t, 1, r.maxSeen.Load())
}

func TestScheduler_FlushCancelsArmedTimer(t *testing.T) {
	r := newRecorder(false)
	s, clock := newManual(t, r)

	s.Arm()
	require.NoError(t, s.Flush(context.Background()))
	waitSaves(t, r, 1)

	clock.fireAll()
	require.Never(t, func() bool { return r.calls.Load() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestScheduler_FlushReturnsSaveError(t *testing.T) {
	r := newRecorder(false)
	r.err = errors.New("boom")
	s, _ := newManual(t, r)

	require.EqualError(t, s.Flush(context.Background()), "boom")
}

func TestScheduler_ExclusiveHonorsContext(t *testing.T) {
	r := newRecorder(true)
	s, _ := newManual(t, r)

	s.Trigger()
	require.Eventually(t, func() bool { return r.inFlight.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Exclusive(ctx, func(context.Context) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)

	r.gate <- struct{}{}
	waitSaves(t, r, 1)
}

func TestScheduler_CloseStopsEverything(t *testing.T) {
	r := newRecorder(false)
	s, clock := newManual(t, r)

	s.Arm()
	s.Close()
	clock.fireAll()
	s.Arm()
	s.Trigger()

	require.Never(t, func() bool { return r.calls.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	require.ErrorIs(t, s.Flush(context.Background()), ErrClosed)
}

func TestScheduler_RealTimerFires(t *testing.T) {
	r := newRecorder(false)
	s := New(context.Background(), 20*time.Millisecond, r.save, nil)
	t.Cleanup(s.Close)

	start := time.Now()
	s.Arm()
	time.Sleep(10 * time.Millisecond)
	s.Arm()

	waitSaves(t, r, 1)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	require.EqualValues(t, 1, r.calls.Load())
}
