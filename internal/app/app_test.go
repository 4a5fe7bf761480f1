// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/model"
	"github.com/gphunter1004/skm/internal/testutil"
)

// recordingNotifier keeps every notification for assertions. Real
// notifiers replace; tests want the history.
type recordingNotifier struct {
	mu      sync.Mutex
	notes   []model.Notification
	cleared int
}

func (r *recordingNotifier) Notify(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared++
}

func (r *recordingNotifier) has(message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if n.Message == message {
			return true
		}
	}
	return false
}

func (r *recordingNotifier) hasSeverity(s model.Severity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if n.Severity == s {
			return true
		}
	}
	return false
}

// journalNotifier records notify and clear calls in order, for asserting
// what is left visible after a sequence of view transitions.
type journalNotifier struct {
	mu     sync.Mutex
	events []string
}

func (j *journalNotifier) Notify(n model.Notification) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, "notify:"+n.Message)
}

func (j *journalNotifier) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, "clear")
}

func (j *journalNotifier) log() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

// confirmStub answers every confirmation the same way and counts asks.
type confirmStub struct {
	mu     sync.Mutex
	answer bool
	calls  int
}

func (c *confirmStub) Confirm(title, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.answer
}

func (c *confirmStub) asked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestApp(t *testing.T, f *testutil.FakeService, notifier app.Notifier, confirm app.Confirmer) *app.App {
	t.Helper()
	a := app.New(app.Options{
		BaseURL:   f.URL(),
		StateDir:  t.TempDir(),
		Notifier:  notifier,
		Confirmer: confirm,
		// Keep the periodic timer quiet during tests.
		RevalidateInterval: time.Hour,
	})
	t.Cleanup(a.Close)
	return a
}

func mustLogin(t *testing.T, a *app.App) {
	t.Helper()
	if !a.Auth.Login(context.Background(), "alice", "secret") {
		t.Fatalf("login against fake service failed")
	}
}

func countSeen(f *testutil.FakeService, methodPath string) int {
	n := 0
	for _, s := range f.Seen() {
		if s == methodPath {
			n++
		}
	}
	return n
}
