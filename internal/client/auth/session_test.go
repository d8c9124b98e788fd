package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestNewSession_ReadsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := makeToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
		UserID:           "u-1",
		Username:         "ann",
	})

	s, err := NewSession(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", s.UserID())
	assert.Equal(t, "ann", s.Username())
	assert.True(t, exp.Equal(s.ExpiresAt()))
	assert.Equal(t, 1, s.Refs())

	got, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}

func TestNewSession_SubjectFallback(t *testing.T) {
	tok := makeToken(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-7"}})
	s, err := NewSession(tok)
	require.NoError(t, err)
	assert.Equal(t, "sub-7", s.UserID())
	assert.True(t, s.ExpiresAt().IsZero())
}

func TestNewSession_RejectsGarbage(t *testing.T) {
	_, err := NewSession("not-a-token")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestSession_RefCounting(t *testing.T) {
	s, err := NewSession(makeToken(t, Claims{UserID: "u"}))
	require.NoError(t, err)

	require.NoError(t, s.Retain())
	require.Equal(t, 2, s.Refs())

	s.Release()
	_, err = s.Token()
	require.NoError(t, err, "one reference is still held")

	s.Release()
	_, err = s.Token()
	require.ErrorIs(t, err, ErrReleased)
	require.ErrorIs(t, s.Retain(), ErrReleased)

	s.Release()
	require.Zero(t, s.Refs())
}

func TestSession_ExpiredToken(t *testing.T) {
	tok := makeToken(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}})
	s, err := NewSession(tok)
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = s.Token()
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestSession_ConcurrentRetainRelease(t *testing.T) {
	s, err := NewSession(makeToken(t, Claims{UserID: "u"}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Retain() == nil {
				s.Release()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, s.Refs())
}
