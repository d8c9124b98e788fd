package auth

import (
	"errors"
	"sync"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Holder is the current user session of the client. It owns one reference
// of the session it holds and serves as the token source of the transports.
type Holder struct {
	mu  sync.Mutex
	cur *Session
}

// Set replaces the held session, releasing the reference of the previous
// one. Draft sessions that retained the previous session keep it alive until
// they close. Set(nil) logs out.
func (h *Holder) Set(s *Session) {
	h.mu.Lock()
	prev := h.cur
	h.cur = s
	h.mu.Unlock()

	if prev != nil && prev != s {
		prev.Release()
	}
}

// Current returns the held session or nil.
func (h *Holder) Current() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur
}

func (h *Holder) Token() (string, error) {
	s := h.Current()
	if s == nil {
		return "", ErrNotLoggedIn
	}
	return s.Token()
}
