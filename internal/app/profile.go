// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gphunter1004/skm/internal/api"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/model"
	"github.com/gphunter1004/skm/internal/session"
)

// ProfileController loads and updates the caller's own account.
type ProfileController struct {
	gw       *api.Gateway
	sessions *session.Store
	notifier Notifier

	mu      sync.Mutex
	seq     uint64
	profile *model.Profile
}

// NewProfileController wires the profile flows.
func NewProfileController(gw *api.Gateway, sessions *session.Store, notifier Notifier) *ProfileController {
	return &ProfileController{gw: gw, sessions: sessions, notifier: notifier}
}

// Load fetches the caller's profile.
func (p *ProfileController) Load(ctx context.Context) bool {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	raw, err := p.gw.Do(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		notifyAPIError(p.notifier, err)
		return false
	}
	profile, err := model.NormalizeProfile(raw)
	if err != nil {
		notifyError(p.notifier, i18n.T("profile.error_load"))
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return false
	}
	p.profile = &profile
	return true
}

// Current returns the loaded profile, if any.
func (p *ProfileController) Current() (model.Profile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.profile == nil {
		return model.Profile{}, false
	}
	return *p.profile, true
}

// Update applies a partial profile change: either field may be empty, and
// submitting nothing at all is a local no-op with a notification. A
// username change updates the session's cached identity; the token remains
// valid across renames.
func (p *ProfileController) Update(ctx context.Context, username, password string) bool {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	payload := map[string]string{}
	if username != "" {
		payload["username"] = username
	}
	if password != "" {
		payload["new_password"] = password
	}
	if len(payload) == 0 {
		notifyInfo(p.notifier, i18n.T("profile.no_changes"))
		return false
	}

	if _, err := p.gw.Do(ctx, http.MethodPut, "/users/me", payload); err != nil {
		notifyAPIError(p.notifier, err)
		return false
	}
	if username != "" {
		p.sessions.SetUsername(username)
	}
	notifySuccess(p.notifier, i18n.T("profile.update_success"))
	// Re-fetch so the display reflects server-side timestamps.
	return p.Load(ctx)
}

// Reset drops profile state. Called when the session ends.
func (p *ProfileController) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.profile = nil
}
