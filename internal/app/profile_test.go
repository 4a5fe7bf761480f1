// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app_test

import (
	"context"
	"testing"

	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/testutil"
)

func TestProfile_Load(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	a := newTestApp(t, f, &recordingNotifier{}, nil)
	mustLogin(t, a)

	if !a.Profile.Load(context.Background()) {
		t.Fatalf("load failed")
	}
	p, ok := a.Profile.Current()
	if !ok || p.Username != "alice" {
		t.Fatalf("profile lost: %+v ok=%v", p, ok)
	}
}

func TestProfile_UpdateNothingIsLocalNoOp(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)
	mustLogin(t, a)

	if a.Profile.Update(context.Background(), "", "   ") {
		t.Fatalf("empty update must not run")
	}
	if countSeen(f, "PUT /users/me") != 0 {
		t.Fatalf("empty update reached the network: %v", f.Seen())
	}
	if !rec.has(i18n.T("profile.no_changes")) {
		t.Fatalf("missing no-changes notification")
	}
}

func TestProfile_UpdateUsername(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)
	mustLogin(t, a)

	if !a.Profile.Update(context.Background(), "alice2", "") {
		t.Fatalf("update failed")
	}
	p, ok := a.Profile.Current()
	if !ok || p.Username != "alice2" {
		t.Fatalf("profile not refreshed: %+v", p)
	}
	// The session identity follows the rename without re-login.
	user, _ := a.Sessions.User()
	if user.Username != "alice2" {
		t.Fatalf("session username not updated: %q", user.Username)
	}
	if !a.Sessions.IsAuthenticated() {
		t.Fatalf("rename must not end the session")
	}
	if !rec.has(i18n.T("profile.update_success")) {
		t.Fatalf("missing update notification")
	}
}

func TestProfile_UpdatePasswordOnly(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	a := newTestApp(t, f, &recordingNotifier{}, nil)
	mustLogin(t, a)

	if !a.Profile.Update(context.Background(), "", "new-password") {
		t.Fatalf("update failed")
	}
	// The username is untouched.
	user, _ := a.Sessions.User()
	if user.Username != "alice" {
		t.Fatalf("password change must not rename: %q", user.Username)
	}
	if countSeen(f, "PUT /users/me") != 1 {
		t.Fatalf("expected one update request: %v", f.Seen())
	}
}
