// Package auth holds the authenticated user context shared by the draft
// sessions of one client.
//
// A Session is reference counted. Every draft session retains it while open
// and releases it on close; once the last reference is gone the token is
// dropped and Token returns ErrReleased.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var ErrReleased = errors.New("auth session released")

// Claims are the token claims the client reads. The signature is verified by
// the backend, not here.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}

type Session struct {
	mu     sync.Mutex
	token  string
	claims Claims
	refs   int
	now    func() time.Time
}

// NewSession parses token and returns a session holding one reference.
func NewSession(token string) (*Session, error) {
	claims := Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return &Session{token: token, claims: claims, refs: 1, now: time.Now}, nil
}

// Retain adds a reference.
func (s *Session) Retain() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs == 0 {
		return ErrReleased
	}
	s.refs++
	return nil
}

// Release drops a reference. Extra calls after the last release are ignored.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs == 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.token = ""
	}
}

// Refs returns the number of live references.
func (s *Session) Refs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// Token returns the access token while the session is alive and the token
// has not expired.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs == 0 {
		return "", ErrReleased
	}
	if exp := s.claims.ExpiresAt; exp != nil && !s.now().Before(exp.Time) {
		return "", common.ErrTokenExpired
	}
	return s.token, nil
}

func (s *Session) UserID() string {
	return s.claims.UserID
}

func (s *Session) Username() string {
	return s.claims.Username
}

// ExpiresAt returns the token expiry or the zero time when the token does
// not expire.
func (s *Session) ExpiresAt() time.Time {
	if s.claims.ExpiresAt == nil {
		return time.Time{}
	}
	return s.claims.ExpiresAt.Time
}
