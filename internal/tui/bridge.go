// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"sync"

	"github.com/gphunter1004/skm/internal/model"
)

// Messages crossing from the application core into the Bubble Tea loop.
type (
	// notificationMsg carries a toast to display. A new toast replaces the
	// standing one.
	notificationMsg struct{ n model.Notification }
	// clearNotificationMsg removes the standing toast.
	clearNotificationMsg struct{}
	// closeModalMsg dismisses any open dialog.
	closeModalMsg struct{}
	// confirmRequestMsg asks the user a yes/no question. The answer goes
	// back over resp; exactly one value is ever sent.
	confirmRequestMsg struct {
		title   string
		message string
		resp    chan bool
	}
	// toastExpiredMsg fires when a toast's timeout elapses. seq guards
	// against expiring a newer toast.
	toastExpiredMsg struct{ seq int }
	// refreshMsg tells the main model to re-read controller state.
	refreshMsg struct{}
)

// bridge adapts the application core's outbound interfaces (Notifier,
// Surface, Confirmer) onto the Bubble Tea message loop. Controllers run
// inside tea.Cmd goroutines, so Confirm may block on the reply channel.
type bridge struct {
	mu   sync.Mutex
	send func(msg interface{})
}

func newBridge() *bridge {
	return &bridge{}
}

// Bind attaches the program's Send function. Until bound, outbound events
// are dropped; the core is only started after the program is running.
func (b *bridge) Bind(send func(msg interface{})) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *bridge) post(msg interface{}) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// Notify implements app.Notifier.
func (b *bridge) Notify(n model.Notification) {
	b.post(notificationMsg{n: n})
}

// Clear implements app.Notifier.
func (b *bridge) Clear() {
	b.post(clearNotificationMsg{})
}

// CloseModal implements app.Surface.
func (b *bridge) CloseModal() {
	b.post(closeModalMsg{})
}

// Confirm implements app.Confirmer. It blocks the calling goroutine until
// the user picks a button or the dialog is dismissed. Before Bind there is
// no one to ask, so the answer is no.
func (b *bridge) Confirm(title, message string) bool {
	b.mu.Lock()
	bound := b.send != nil
	b.mu.Unlock()
	if !bound {
		return false
	}
	resp := make(chan bool, 1)
	b.post(confirmRequestMsg{title: title, message: message, resp: resp})
	return <-resp
}
