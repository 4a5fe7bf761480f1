// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gphunter1004/skm/internal/api"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/logging"
	"github.com/gphunter1004/skm/internal/model"
	"github.com/gphunter1004/skm/internal/session"
)

// SortField orders the user directory.
type SortField string

const (
	SortByUsername SortField = "username"
	SortByCreated  SortField = "created"
	SortByID       SortField = "id"
)

// DirectoryStats summarize key coverage across the directory.
type DirectoryStats struct {
	Total    int
	WithKeys int
	// Coverage is the percentage of users holding a key, 0-100.
	Coverage int
}

// DirectoryController is the admin-only user listing: load, filter, sort,
// detail lookup and deletion. Access is gated locally on the confirmed
// role before any network call.
type DirectoryController struct {
	gw        *api.Gateway
	sessions  *session.Store
	notifier  Notifier
	confirmer Confirmer
	listPath  string

	mu     sync.Mutex
	seq    uint64
	users  []model.UserSummary
	loaded bool
	filter string
	sortBy SortField
}

// NewDirectoryController wires the directory flows. listPath defaults to
// "/users"; deployments running the admin-prefixed revision configure
// "/admin/users-list".
func NewDirectoryController(gw *api.Gateway, sessions *session.Store, notifier Notifier, confirmer Confirmer, listPath string) *DirectoryController {
	if listPath == "" {
		listPath = "/users"
	}
	return &DirectoryController{
		gw:        gw,
		sessions:  sessions,
		notifier:  notifier,
		confirmer: confirmer,
		listPath:  listPath,
		sortBy:    SortByUsername,
	}
}

// isAdmin checks the confirmed session role.
func (d *DirectoryController) isAdmin() bool {
	user, confirmed := d.sessions.User()
	return confirmed && user.IsAdmin()
}

// Load fetches the directory. Non-admins are refused locally, without a
// network call.
func (d *DirectoryController) Load(ctx context.Context) bool {
	if !d.isAdmin() {
		notifyWarning(d.notifier, i18n.T("router.admin_only"))
		return false
	}

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	raw, err := d.gw.Do(ctx, http.MethodGet, d.listPath, nil)
	if err != nil {
		notifyAPIError(d.notifier, err)
		return false
	}
	users, err := model.NormalizeUserList(raw)
	if err != nil {
		logging.Warnf("directory: listing unusable: %v", err)
		notifyError(d.notifier, i18n.T("users.error_load"))
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		// A newer load or a reset superseded this response.
		return false
	}
	d.users = users
	d.loaded = true
	return true
}

// SetFilter narrows the visible listing to usernames containing the query,
// case-insensitively. An empty query shows everyone.
func (d *DirectoryController) SetFilter(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = strings.TrimSpace(query)
}

// SetSort selects the directory ordering.
func (d *DirectoryController) SetSort(field SortField) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sortBy = field
}

// Sort returns the current ordering.
func (d *DirectoryController) Sort() SortField {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sortBy
}

// NextSort returns the ordering that follows the current one, cycling
// username to created to id.
func (d *DirectoryController) NextSort() SortField {
	switch d.Sort() {
	case SortByUsername:
		return SortByCreated
	case SortByCreated:
		return SortByID
	default:
		return SortByUsername
	}
}

// Users returns the filtered, sorted listing.
func (d *DirectoryController) Users() []model.UserSummary {
	d.mu.Lock()
	defer d.mu.Unlock()

	visible := make([]model.UserSummary, 0, len(d.users))
	needle := strings.ToLower(d.filter)
	for _, u := range d.users {
		if needle == "" || strings.Contains(strings.ToLower(u.Username), needle) {
			visible = append(visible, u)
		}
	}

	switch d.sortBy {
	case SortByCreated:
		sort.SliceStable(visible, func(i, j int) bool { return visible[i].CreatedAt.Before(visible[j].CreatedAt) })
	case SortByID:
		sort.SliceStable(visible, func(i, j int) bool { return visible[i].ID < visible[j].ID })
	default:
		sort.SliceStable(visible, func(i, j int) bool {
			return strings.ToLower(visible[i].Username) < strings.ToLower(visible[j].Username)
		})
	}
	return visible
}

// Loaded reports whether a listing has been fetched this session.
func (d *DirectoryController) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// Stats summarizes the full (unfiltered) directory.
func (d *DirectoryController) Stats() DirectoryStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	stats := DirectoryStats{Total: len(d.users)}
	for _, u := range d.users {
		if u.HasSSHKey {
			stats.WithKeys++
		}
	}
	if stats.Total > 0 {
		stats.Coverage = stats.WithKeys * 100 / stats.Total
	}
	return stats
}

// Detail fetches one user's detail record (including key metadata when the
// backend provides it).
func (d *DirectoryController) Detail(ctx context.Context, id int) (model.Profile, bool) {
	if !d.isAdmin() {
		notifyWarning(d.notifier, i18n.T("router.admin_only"))
		return model.Profile{}, false
	}
	raw, err := d.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/admin/users/%d", id), nil)
	if err != nil {
		notifyAPIError(d.notifier, err)
		return model.Profile{}, false
	}
	detail, err := model.NormalizeProfile(raw)
	if err != nil {
		notifyError(d.notifier, i18n.T("users.error_detail"))
		return model.Profile{}, false
	}
	return detail, true
}

// Delete removes a user after confirmation. Deleting is irreversible and
// admins cannot be deleted.
func (d *DirectoryController) Delete(ctx context.Context, id int, username string) bool {
	if !d.isAdmin() {
		notifyWarning(d.notifier, i18n.T("router.admin_only"))
		return false
	}
	// The admin guard reads the listing, which may be stale or never
	// loaded when the delete comes from the CLI. Refresh it first so the
	// role check sees current data.
	if !d.Load(ctx) {
		return false
	}
	d.mu.Lock()
	for _, u := range d.users {
		if u.ID == id && u.IsAdmin() {
			d.mu.Unlock()
			notifyWarning(d.notifier, i18n.T("users.error_delete_admin"))
			return false
		}
	}
	d.mu.Unlock()

	if !d.confirmer.Confirm(i18n.T("users.confirm_delete_title"), i18n.T("users.confirm_delete", username)) {
		return false
	}
	if _, err := d.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil); err != nil {
		notifyAPIError(d.notifier, err)
		return false
	}
	notifySuccess(d.notifier, i18n.T("users.delete_success", username))
	// Refresh so the listing reflects the removal.
	return d.Load(ctx)
}

// Reset drops directory state. Called when the session ends.
func (d *DirectoryController) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.users = nil
	d.loaded = false
	d.filter = ""
}
