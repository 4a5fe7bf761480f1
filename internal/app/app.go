// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gphunter1004/skm/internal/api"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/logging"
	"github.com/gphunter1004/skm/internal/model"
	"github.com/gphunter1004/skm/internal/session"
)

// Options configures an App. Only BaseURL and StateDir are mandatory; the
// rest default to production wiring.
type Options struct {
	BaseURL  string
	StateDir string

	Notifier  Notifier
	Surface   Surface
	Confirmer Confirmer

	// HTTPClient overrides the gateway's client (tests).
	HTTPClient *http.Client
	// UnwrapModes overrides the per-endpoint response unwrap table.
	UnwrapModes map[string]api.UnwrapMode
	// ValidatePath is the who-am-I endpoint, default "/validate".
	ValidatePath string
	// UsersListPath is the directory listing endpoint, default "/users".
	UsersListPath string
	// RevalidateInterval is the periodic session re-check cadence.
	RevalidateInterval time.Duration
	// RequestTimeout bounds individual requests.
	RequestTimeout time.Duration
}

// App is the explicit application context: every controller, the router,
// the session store and the gateway, wired together with no ambient
// singletons. The presentation layer holds one *App and drives it through
// Dispatch.
type App struct {
	Sessions  *session.Store
	Gateway   *api.Gateway
	Router    *Router
	Auth      *AuthController
	Keys      *KeyController
	Directory *DirectoryController
	Profile   *ProfileController
	Notifier  Notifier
}

// New wires an application context from options.
func New(opts Options) *App {
	if opts.Notifier == nil {
		opts.Notifier = discardNotifier{}
	}
	if opts.Surface == nil {
		opts.Surface = NopSurface{}
	}
	if opts.Confirmer == nil {
		opts.Confirmer = AlwaysConfirm{}
	}

	// Every consumer shares one slot so the router can tell what kind of
	// notification is standing when a view changes.
	slot := newNotificationSlot(opts.Notifier)

	a := &App{Notifier: slot}
	a.Sessions = session.NewStore(opts.StateDir)

	gwOpts := []api.Option{
		api.WithUnauthorizedHook(func() { a.Auth.ForcedLogout() }),
	}
	if opts.HTTPClient != nil {
		gwOpts = append(gwOpts, api.WithHTTPClient(opts.HTTPClient))
	}
	if opts.UnwrapModes != nil {
		gwOpts = append(gwOpts, api.WithUnwrapModes(opts.UnwrapModes))
	}
	if opts.RequestTimeout > 0 {
		gwOpts = append(gwOpts, api.WithTimeout(opts.RequestTimeout))
	}
	a.Gateway = api.New(opts.BaseURL, a.Sessions, gwOpts...)

	a.Router = NewRouter(a.Sessions, slot, opts.Surface)
	a.Auth = NewAuthController(a.Gateway, a.Sessions, a.Router, slot, opts.ValidatePath, opts.RevalidateInterval)
	a.Keys = NewKeyController(a.Gateway, slot, opts.Confirmer)
	a.Directory = NewDirectoryController(a.Gateway, a.Sessions, slot, opts.Confirmer, opts.UsersListPath)
	a.Profile = NewProfileController(a.Gateway, a.Sessions, slot)

	a.Router.SetLoader(a)
	a.Router.SetOnReset(a.resetControllers)
	return a
}

// Start restores a persisted session and validates it. Returns whether the
// client came up authenticated. The periodic revalidation loop is started
// either way; it idles while logged out.
func (a *App) Start(ctx context.Context) bool {
	if err := a.Sessions.Restore(); err != nil {
		logging.Warnf("app: restoring session: %v", err)
	}
	authenticated := false
	if a.Sessions.Token() != "" {
		if a.Auth.Validate(ctx) {
			authenticated = true
			user, _ := a.Sessions.User()
			notifySuccess(a.Notifier, i18n.T("auth.welcome_back", user.Username))
			a.Router.LandAfterLogin(ctx)
		}
	}
	a.Auth.StartRevalidation()
	return authenticated
}

// Close stops background work.
func (a *App) Close() {
	a.Auth.StopRevalidation()
}

// resetControllers drops per-session display state whenever the router
// falls back to loggedOut.
func (a *App) resetControllers() {
	a.Keys.Reset()
	a.Directory.Reset()
	a.Profile.Reset()
}

// EnterKeys implements ViewLoader: entering the keys view re-fetches the
// record, tolerating absence.
func (a *App) EnterKeys(ctx context.Context) {
	a.Keys.View(ctx)
}

// EnterUsers implements ViewLoader: entering the directory reloads it.
func (a *App) EnterUsers(ctx context.Context) {
	a.Directory.Load(ctx)
}

// EnterProfile implements ViewLoader: entering the profile reloads it.
func (a *App) EnterProfile(ctx context.Context) {
	a.Profile.Load(ctx)
}

// discardNotifier drops notifications; used when a consumer installs none.
type discardNotifier struct{}

func (discardNotifier) Notify(model.Notification) {}
func (discardNotifier) Clear()                    {}
