// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

// Package session holds the authenticated client's token and confirmed user
// identity. The token is the only state persisted across runs; everything
// else is re-fetched. All token mutations in the application are funneled
// through Save/Clear here so the router's authenticated-state check stays
// consistent no matter which call site (login, logout, 401 interception,
// periodic validation) triggered the change.
package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gphunter1004/skm/internal/logging"
	"github.com/gphunter1004/skm/internal/model"
)

// tokenFile is the well-known name under the state directory.
const tokenFile = "token"

// Store is the session store. A restored token is "unconfirmed" until
// Confirm is called with a validated user; IsAuthenticated is false until
// then, which keeps protected views from flashing before validation
// completes.
type Store struct {
	mu        sync.Mutex
	dir       string
	token     string
	user      model.UserSummary
	confirmed bool
}

// NewStore creates a session store persisting under dir. The directory is
// created lazily on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the per-user state directory for the application.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "skm"), nil
}

// Restore reads the persisted token, if any. It does not validate — the
// session stays unconfirmed until Confirm is called. A token whose JWT
// expiry has already passed is dropped immediately so startup does not
// bother the server with a dead session.
func (s *Store) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = model.UserSummary{}
	s.confirmed = false

	data, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return nil
	}
	if exp, ok := tokenExpiry(token); ok && time.Now().After(exp) {
		logging.Debugf("stored token expired at %s, discarding", exp.Format(time.RFC3339))
		_ = os.Remove(filepath.Join(s.dir, tokenFile))
		return nil
	}
	s.token = token
	return nil
}

// Save stores the token in memory and persists it. Saving a new token
// resets confirmation; the caller must re-validate.
func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = model.UserSummary{}
	s.confirmed = false

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token+"\n"), 0o600)
}

// Clear drops the token and the in-memory user, and removes the persisted
// copy. Clearing an already-clear store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = model.UserSummary{}
	s.confirmed = false

	err := os.Remove(filepath.Join(s.dir, tokenFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Confirm records the validated user identity for the current token.
func (s *Store) Confirm(user model.UserSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		// A racing logout won the token; do not resurrect the session.
		return
	}
	s.user = user
	s.confirmed = true
}

// IsAuthenticated is true iff a token is present and the user has been
// confirmed by a validation call.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.confirmed
}

// Token returns the current token, or "" when logged out. Implements the
// gateway's TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the confirmed user, if any.
func (s *Store) User() (model.UserSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.confirmed
}

// SetUsername updates the cached username after a profile change. The
// token is untouched; the server keeps it valid across renames.
func (s *Store) SetUsername(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		s.user.Username = username
	}
}

// tokenExpiry peeks at the exp claim of a JWT without verifying the
// signature; the client has no key material to verify with, and the server
// re-checks every request anyway.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
