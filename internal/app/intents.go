// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app

import (
	"context"

	"github.com/gphunter1004/skm/internal/logging"
)

// Intent is a typed request raised by the presentation layer. The sealed
// marker keeps the set closed: Dispatch handles every kind exhaustively and
// the compiler flags a presentation layer constructing anything else.
type Intent interface {
	isIntent()
}

// NavigateIntent switches the active view.
type NavigateIntent struct{ Target View }

// LoginIntent authenticates with the given credentials.
type LoginIntent struct{ Username, Password string }

// RegisterIntent creates a new account. It never logs the account in.
type RegisterIntent struct{ Username, Password string }

// LogoutIntent ends the session deliberately.
type LogoutIntent struct{}

// CreateKeyIntent requests server-side generation of a key pair.
type CreateKeyIntent struct{}

// RefreshKeyIntent re-fetches the current key record.
type RefreshKeyIntent struct{}

// DeleteKeyIntent destroys the stored key pair.
type DeleteKeyIntent struct{}

// LoadUsersIntent (re)loads the user directory.
type LoadUsersIntent struct{}

// FilterUsersIntent narrows the directory listing by substring.
type FilterUsersIntent struct{ Query string }

// SortUsersIntent reorders the directory listing.
type SortUsersIntent struct{ Field SortField }

// DeleteUserIntent removes a directory entry. Username rides along for the
// confirmation prompt and the success message.
type DeleteUserIntent struct {
	ID       int
	Username string
}

// LoadProfileIntent (re)loads the caller's own profile.
type LoadProfileIntent struct{}

// UpdateProfileIntent changes the caller's username and/or password. Empty
// fields are left untouched.
type UpdateProfileIntent struct{ Username, Password string }

func (NavigateIntent) isIntent()      {}
func (LoginIntent) isIntent()         {}
func (RegisterIntent) isIntent()      {}
func (LogoutIntent) isIntent()        {}
func (CreateKeyIntent) isIntent()     {}
func (RefreshKeyIntent) isIntent()    {}
func (DeleteKeyIntent) isIntent()     {}
func (LoadUsersIntent) isIntent()     {}
func (FilterUsersIntent) isIntent()   {}
func (SortUsersIntent) isIntent()     {}
func (DeleteUserIntent) isIntent()    {}
func (LoadProfileIntent) isIntent()   {}
func (UpdateProfileIntent) isIntent() {}

// Dispatch routes an intent to the owning controller. All user feedback
// flows through the notifier; the boolean only reports whether the
// operation took effect, so callers can refresh what they render.
func (a *App) Dispatch(ctx context.Context, intent Intent) bool {
	switch in := intent.(type) {
	case NavigateIntent:
		return a.Router.Goto(ctx, in.Target)
	case LoginIntent:
		return a.Auth.Login(ctx, in.Username, in.Password)
	case RegisterIntent:
		return a.Auth.Register(ctx, in.Username, in.Password)
	case LogoutIntent:
		a.Auth.Logout(ctx)
		return true
	case CreateKeyIntent:
		return a.Keys.Create(ctx)
	case RefreshKeyIntent:
		return a.Keys.View(ctx)
	case DeleteKeyIntent:
		return a.Keys.Delete(ctx)
	case LoadUsersIntent:
		return a.Directory.Load(ctx)
	case FilterUsersIntent:
		a.Directory.SetFilter(in.Query)
		return true
	case SortUsersIntent:
		a.Directory.SetSort(in.Field)
		return true
	case DeleteUserIntent:
		return a.Directory.Delete(ctx, in.ID, in.Username)
	case LoadProfileIntent:
		return a.Profile.Load(ctx)
	case UpdateProfileIntent:
		return a.Profile.Update(ctx, in.Username, in.Password)
	default:
		logging.Warnf("app: unhandled intent %T", intent)
		return false
	}
}
