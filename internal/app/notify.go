// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app

import (
	"sync"
	"time"

	"github.com/gphunter1004/skm/internal/api"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/model"
)

// Notifier receives user-visible notifications. Implementations show one
// notification at a time; Notify replaces whatever is currently visible,
// and Clear removes it.
type Notifier interface {
	Notify(model.Notification)
	Clear()
}

// Surface is the slice of the presentation layer the router needs: every
// view transition closes any open modal.
type Surface interface {
	CloseModal()
}

// Confirmer asks the user to approve a destructive operation. The TUI shows
// a dialog, the CLI prompts on stdin, tests stub it out.
type Confirmer interface {
	Confirm(title, message string) bool
}

// notificationSlot wraps the installed Notifier and remembers what is on
// screen. View transitions drop a standing error through ClearError while
// success and info toasts ride through the transition untouched.
type notificationSlot struct {
	mu       sync.Mutex
	out      Notifier
	severity model.Severity
	visible  bool
}

func newNotificationSlot(out Notifier) *notificationSlot {
	return &notificationSlot{out: out}
}

func (s *notificationSlot) Notify(n model.Notification) {
	s.mu.Lock()
	s.severity = n.Severity
	s.visible = true
	s.mu.Unlock()
	s.out.Notify(n)
}

func (s *notificationSlot) Clear() {
	s.mu.Lock()
	s.visible = false
	s.mu.Unlock()
	s.out.Clear()
}

// ClearError removes the visible notification only when it reports an
// error. Lesser severities stay put.
func (s *notificationSlot) ClearError() {
	s.mu.Lock()
	drop := s.visible && s.severity == model.SeverityError
	if drop {
		s.visible = false
	}
	s.mu.Unlock()
	if drop {
		s.out.Clear()
	}
}

// NopSurface is a Surface for consumers without modals (the CLI).
type NopSurface struct{}

func (NopSurface) CloseModal() {}

// AlwaysConfirm approves everything; used when --yes is passed on the CLI.
type AlwaysConfirm struct{}

func (AlwaysConfirm) Confirm(string, string) bool { return true }

const (
	successTimeout = 3 * time.Second
	infoTimeout    = 3 * time.Second
	warningTimeout = 4 * time.Second
	errorTimeout   = 5 * time.Second
)

func notifySuccess(n Notifier, message string) {
	n.Notify(model.Notification{Severity: model.SeveritySuccess, Message: message, Timeout: successTimeout})
}

func notifyInfo(n Notifier, message string) {
	n.Notify(model.Notification{Severity: model.SeverityInfo, Message: message, Timeout: infoTimeout})
}

func notifyWarning(n Notifier, message string) {
	n.Notify(model.Notification{Severity: model.SeverityWarning, Message: message, Timeout: warningTimeout})
}

func notifyError(n Notifier, message string) {
	n.Notify(model.Notification{Severity: model.SeverityError, Message: message, Timeout: errorTimeout})
}

// notifyAPIError surfaces a gateway failure according to the error policy.
// Auth failures are silent here: the forced-logout path has already raised
// its own notification by the time the controller sees the error.
func notifyAPIError(n Notifier, err error) {
	switch api.KindOf(err) {
	case api.KindAuth:
	case api.KindValidation:
		// Local pre-network failures carry their own translated message.
		notifyError(n, err.Error())
	case api.KindNetwork:
		notifyError(n, i18n.T("error.network"))
	case api.KindServer:
		notifyError(n, i18n.T("error.server"))
	default:
		notifyError(n, err.Error())
	}
}
