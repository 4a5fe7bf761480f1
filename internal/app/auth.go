// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gphunter1004/skm/internal/api"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/logging"
	"github.com/gphunter1004/skm/internal/model"
	"github.com/gphunter1004/skm/internal/session"
)

const (
	minUsernameLen = 2
	minPasswordLen = 4

	// DefaultRevalidateInterval is how often an authenticated session is
	// silently re-checked against the server.
	DefaultRevalidateInterval = 5 * time.Minute
)

// AuthController owns the login/register/logout flows and the session
// lifecycle. Every path that invalidates a session funnels through the
// session store, and a generation counter makes a user-initiated logout
// win any race against in-flight validation responses.
type AuthController struct {
	gw           *api.Gateway
	sessions     *session.Store
	router       *Router
	notifier     Notifier
	validatePath string
	interval     time.Duration

	// gen is bumped whenever the session is torn down; a validation
	// response from an older generation is discarded instead of
	// resurrecting the session.
	gen atomic.Uint64

	mu             sync.Mutex
	lastRegistered string

	stopOnce sync.Once
	stop     chan struct{}
}

// NewAuthController wires the auth flows. validatePath is the who-am-I
// endpoint ("/validate" unless configured otherwise).
func NewAuthController(gw *api.Gateway, sessions *session.Store, router *Router, notifier Notifier, validatePath string, interval time.Duration) *AuthController {
	if validatePath == "" {
		validatePath = "/validate"
	}
	if interval <= 0 {
		interval = DefaultRevalidateInterval
	}
	return &AuthController{
		gw:           gw,
		sessions:     sessions,
		router:       router,
		notifier:     notifier,
		validatePath: validatePath,
		interval:     interval,
		stop:         make(chan struct{}),
	}
}

// Login authenticates and, on success, lands on the keys view. Empty
// credentials are rejected locally without a network call. A login whose
// follow-up validation fails is treated as a failed login: no partial
// state survives.
func (a *AuthController) Login(ctx context.Context, username, password string) bool {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		notifyAPIError(a.notifier, api.ValidationError(i18n.T("auth.error_missing_credentials")))
		return false
	}

	raw, err := a.gw.Do(ctx, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		logging.Debugf("auth: login failed for %s: %v", username, err)
		notifyAPIError(a.notifier, err)
		return false
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Token == "" {
		notifyError(a.notifier, i18n.T("auth.login_failed"))
		return false
	}
	if err := a.sessions.Save(payload.Token); err != nil {
		logging.Warnf("auth: could not persist token: %v", err)
	}

	if !a.Validate(ctx) {
		// Nominal login but no usable identity: treat the whole login as
		// failed rather than leave a half-open session.
		_ = a.sessions.Clear()
		notifyError(a.notifier, i18n.T("auth.login_failed"))
		return false
	}

	user, _ := a.sessions.User()
	notifySuccess(a.notifier, i18n.T("auth.login_success", user.Username))
	a.router.LandAfterLogin(ctx)
	return true
}

// Register creates an account. It does not log in: on success the router
// stays on the auth forms and the login form is pre-filled with the new
// username (see LastRegistered).
func (a *AuthController) Register(ctx context.Context, username, password string) bool {
	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) < minUsernameLen {
		notifyAPIError(a.notifier, api.ValidationError(i18n.T("auth.error_username_too_short", minUsernameLen)))
		return false
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		notifyAPIError(a.notifier, api.ValidationError(i18n.T("auth.error_password_too_short", minPasswordLen)))
		return false
	}

	if _, err := a.gw.Do(ctx, http.MethodPost, "/register", map[string]string{
		"username": username,
		"password": password,
	}); err != nil {
		notifyAPIError(a.notifier, err)
		return false
	}

	a.mu.Lock()
	a.lastRegistered = username
	a.mu.Unlock()
	notifySuccess(a.notifier, i18n.T("auth.register_success"))
	return true
}

// LastRegistered returns the most recently registered username, for
// pre-filling the login form.
func (a *AuthController) LastRegistered() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastRegistered
}

// Validate calls the who-am-I endpoint and confirms the session's user on
// success. On any failure the session is cleared. Safe to call repeatedly;
// used at startup, after login, and from the periodic revalidation timer.
func (a *AuthController) Validate(ctx context.Context) bool {
	if a.sessions.Token() == "" {
		return false
	}
	gen := a.gen.Load()

	raw, err := a.gw.Do(ctx, http.MethodGet, a.validatePath, nil)
	if err != nil {
		logging.Debugf("auth: validation failed: %v", err)
		if a.gen.Load() == gen {
			a.invalidate()
		}
		return false
	}
	user, err := model.NormalizeValidate(raw)
	if err != nil {
		logging.Warnf("auth: validation response unusable: %v", err)
		if a.gen.Load() == gen {
			a.invalidate()
		}
		return false
	}
	if a.gen.Load() != gen {
		// A logout won the race; the stale identity must not revive the
		// session.
		return false
	}
	a.sessions.Confirm(user)
	a.router.EnforceRole(ctx)
	return true
}

// Logout unconditionally tears the session down and routes to the auth
// forms. There is no server round trip, so it can never be blocked by
// network failure.
func (a *AuthController) Logout(ctx context.Context) {
	a.gen.Add(1)
	user, confirmed := a.sessions.User()
	a.invalidate()
	if confirmed {
		notifyInfo(a.notifier, i18n.T("auth.logout_success", user.Username))
	} else {
		a.notifier.Clear()
	}
	_ = ctx
}

// ForcedLogout is the expired-session path, invoked by the gateway when an
// authenticated request comes back 401/403 and by the revalidation timer.
// Idempotent: repeated discovery of the same dead session notifies once.
func (a *AuthController) ForcedLogout() {
	a.gen.Add(1)
	if a.sessions.Token() == "" {
		return
	}
	a.invalidate()
	notifyWarning(a.notifier, i18n.T("auth.session_expired"))
}

// invalidate clears session state and resets the router.
func (a *AuthController) invalidate() {
	if err := a.sessions.Clear(); err != nil {
		logging.Warnf("auth: clearing session: %v", err)
	}
	a.router.Reset()
}

// StartRevalidation launches the periodic re-validation loop. A failure
// during a tick follows the same forced-logout path as any other expired
// session discovery.
func (a *AuthController) StartRevalidation() {
	go func() {
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stop:
				return
			case <-ticker.C:
				if a.sessions.Token() == "" {
					continue
				}
				wasAuthenticated := a.sessions.IsAuthenticated()
				gen := a.gen.Load()
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				ok := a.Validate(ctx)
				cancel()
				// The 401 path and a racing logout have both already been
				// handled (and bumped gen); anything else that failed here
				// is an expired session discovered by the timer.
				if !ok && wasAuthenticated && a.gen.Load() == gen {
					notifyWarning(a.notifier, i18n.T("auth.session_expired"))
				}
			}
		}
	}()
}

// StopRevalidation stops the periodic loop. Safe to call more than once.
func (a *AuthController) StopRevalidation() {
	a.stopOnce.Do(func() { close(a.stop) })
}
