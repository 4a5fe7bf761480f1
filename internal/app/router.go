// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

// package app holds the client's application core: the view router, the
// auth session lifecycle, and the controllers that mediate between the
// presentation layer and the REST gateway. The presentation layer raises
// intents; nothing in here touches a terminal directly.
package app

import (
	"context"
	"sync"

	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/logging"
	"github.com/gphunter1004/skm/internal/model"
	"github.com/gphunter1004/skm/internal/session"
)

// View identifies which part of the UI is active. LoggedOutView is the
// superstate gating the other three: no view is reachable without an
// authenticated session.
type View int

const (
	LoggedOutView View = iota
	KeysView
	UsersView
	ProfileView
)

// String returns the view's wire/config name.
func (v View) String() string {
	switch v {
	case KeysView:
		return "keys"
	case UsersView:
		return "users"
	case ProfileView:
		return "profile"
	default:
		return "loggedOut"
	}
}

// ViewByName resolves a view name; unknown names land on keys, matching the
// original front end's fallback.
func ViewByName(name string) View {
	switch name {
	case "users":
		return UsersView
	case "profile":
		return ProfileView
	default:
		return KeysView
	}
}

// AccessPolicy decides whether a user may enter a view. The single rule:
// the users directory requires the admin role. Keys and profile are open to
// every authenticated user.
type AccessPolicy struct{}

// Allows reports whether user may enter target.
func (AccessPolicy) Allows(target View, user model.UserSummary) bool {
	if target == UsersView {
		return user.IsAdmin()
	}
	return true
}

// ViewLoader runs the per-view data load when a view is entered. The keys
// load is best-effort: having no key is a valid empty state, not an error.
type ViewLoader interface {
	EnterKeys(ctx context.Context)
	EnterUsers(ctx context.Context)
	EnterProfile(ctx context.Context)
}

// Router tracks the active view and enforces access rules. Every accepted
// transition closes any open modal and clears a standing error
// notification before the target view's load runs; success and info
// toasts survive the change.
type Router struct {
	mu       sync.Mutex
	current  View
	policy   AccessPolicy
	sessions *session.Store
	notifier *notificationSlot
	surface  Surface
	loader   ViewLoader
	onReset  func()
}

// NewRouter creates a router starting in the logged-out state.
func NewRouter(sessions *session.Store, notifier *notificationSlot, surface Surface) *Router {
	return &Router{
		current:  LoggedOutView,
		sessions: sessions,
		notifier: notifier,
		surface:  surface,
	}
}

// SetLoader wires the per-view loads. Set once during app construction.
func (r *Router) SetLoader(l ViewLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loader = l
}

// SetOnReset registers a hook run after every fall-back to loggedOut, so
// controllers can drop per-session state.
func (r *Router) SetOnReset(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReset = fn
}

// Current returns the active view.
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Goto navigates to target. It rejects the transition locally — without a
// network call and without changing state — when the session is not
// authenticated or the access policy denies the target. Returns whether
// the transition happened.
func (r *Router) Goto(ctx context.Context, target View) bool {
	if target == LoggedOutView {
		r.Reset()
		return true
	}

	user, confirmed := r.sessions.User()
	if !r.sessions.IsAuthenticated() || !confirmed {
		logging.Debugf("router: rejected %s, no confirmed session", target)
		return false
	}
	if !r.policy.Allows(target, user) {
		notifyWarning(r.notifier, i18n.T("router.admin_only"))
		return false
	}

	r.transition(target)
	r.load(ctx, target)
	return true
}

// LandAfterLogin moves to the post-login landing view (always keys).
func (r *Router) LandAfterLogin(ctx context.Context) {
	r.transition(KeysView)
	r.load(ctx, KeysView)
}

// Reset forces the logged-out state. Used by logout and by session
// invalidation; never fails.
func (r *Router) Reset() {
	r.mu.Lock()
	r.current = LoggedOutView
	onReset := r.onReset
	r.mu.Unlock()
	r.surface.CloseModal()
	r.notifier.Clear()
	if onReset != nil {
		onReset()
	}
}

// EnforceRole re-applies the access policy after a revalidation. A user
// sitting on the directory who lost admin standing is forced back to keys.
func (r *Router) EnforceRole(ctx context.Context) {
	user, confirmed := r.sessions.User()
	if !confirmed {
		return
	}
	r.mu.Lock()
	evict := r.current == UsersView && !r.policy.Allows(UsersView, user)
	r.mu.Unlock()
	if evict {
		logging.Infof("router: admin standing lost, leaving users view")
		r.transition(KeysView)
		r.load(ctx, KeysView)
	}
}

func (r *Router) transition(target View) {
	r.mu.Lock()
	from := r.current
	r.current = target
	r.mu.Unlock()
	logging.Debugf("router: %s -> %s", from, target)
	r.surface.CloseModal()
	r.notifier.ClearError()
}

func (r *Router) load(ctx context.Context, target View) {
	r.mu.Lock()
	loader := r.loader
	r.mu.Unlock()
	if loader == nil {
		return
	}
	switch target {
	case KeysView:
		loader.EnterKeys(ctx)
	case UsersView:
		loader.EnterUsers(ctx)
	case ProfileView:
		loader.EnterProfile(ctx)
	}
}
