package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/client/auth"
	"github.com/dmitrijs2005/gophdraft/internal/client/repositories/metadata"
)

// getToken is an indirection used to facilitate testing.
var getToken = GetToken

// Login reads an access token without echo, checks that it parses and is
// not expired, and stores it for the next start.
func (a *App) Login(ctx context.Context) error {
	tok, err := getToken(a.out)
	if err != nil {
		return err
	}

	s, err := auth.NewSession(tok)
	if err != nil {
		return err
	}
	if _, err := s.Token(); err != nil {
		s.Release()
		return err
	}

	a.auth.Set(s)
	if err := a.metadata.Set(ctx, metadata.KeyAccessToken, tok); err != nil {
		a.log.Warn(ctx, "storing access token failed", "error", err)
	}

	a.println("Login successful")
	if exp := s.ExpiresAt(); !exp.IsZero() {
		a.println("Token expires", exp.Format(time.RFC1123))
	}
	return nil
}

// Logout forgets the stored token. An open draft keeps its own reference
// until it is closed.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return auth.ErrNotLoggedIn
	}
	a.auth.Set(nil)
	if err := a.metadata.Delete(ctx, metadata.KeyAccessToken); err != nil {
		return fmt.Errorf("forget access token: %w", err)
	}
	a.println("Logged out")
	return nil
}

// restoreLogin loads the stored token, if any. A token that no longer
// parses or has expired is removed.
func (a *App) restoreLogin(ctx context.Context) error {
	tok, ok, err := a.metadata.Get(ctx, metadata.KeyAccessToken)
	if err != nil || !ok {
		return err
	}

	s, err := auth.NewSession(tok)
	if err == nil {
		if _, err = s.Token(); err != nil {
			s.Release()
		}
	}
	if err != nil {
		_ = a.metadata.Delete(ctx, metadata.KeyAccessToken)
		return err
	}

	a.auth.Set(s)
	return nil
}
