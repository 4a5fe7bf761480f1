// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/model"
	"github.com/gphunter1004/skm/internal/testutil"
)

func TestLogin_LandsOnKeys(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)

	mustLogin(t, a)

	if !a.Sessions.IsAuthenticated() {
		t.Fatalf("expected authenticated session")
	}
	if a.Router.Current() != app.KeysView {
		t.Fatalf("expected keys view after login, got %s", a.Router.Current())
	}
	user, _ := a.Sessions.User()
	if user.Username != "alice" || !user.IsAdmin() {
		t.Fatalf("confirmed identity lost: %+v", user)
	}
	if !rec.has(i18n.T("auth.login_success", "alice")) {
		t.Fatalf("missing login success notification")
	}
	// Login validates before announcing success, then the landing view
	// loads its data.
	for _, want := range []string{"POST /login", "GET /validate", "GET /keys"} {
		if countSeen(f, want) != 1 {
			t.Fatalf("expected exactly one %q, log: %v", want, f.Seen())
		}
	}
}

func TestLogin_EnvelopedBackendRevision(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Envelope = true
	a := newTestApp(t, f, &recordingNotifier{}, nil)

	mustLogin(t, a)
	if !a.Sessions.IsAuthenticated() {
		t.Fatalf("expected authenticated session against enveloped backend")
	}
}

func TestLogin_SuccessToastSurvivesLanding(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	j := &journalNotifier{}
	a := newTestApp(t, f, j, nil)
	mustLogin(t, a)

	log := j.log()
	if len(log) == 0 {
		t.Fatalf("no notification events")
	}
	want := "notify:" + i18n.T("auth.login_success", "alice")
	if got := log[len(log)-1]; got != want {
		t.Fatalf("visible after landing: %q, want %q (full log %v)", got, want, log)
	}
}

func TestStart_WelcomeBackSurvivesLanding(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	dir := t.TempDir()

	first := app.New(app.Options{BaseURL: f.URL(), StateDir: dir, RevalidateInterval: time.Hour})
	if !first.Auth.Login(context.Background(), "alice", "secret") {
		t.Fatalf("seed login failed")
	}
	first.Close()

	j := &journalNotifier{}
	second := app.New(app.Options{BaseURL: f.URL(), StateDir: dir, Notifier: j, RevalidateInterval: time.Hour})
	defer second.Close()
	if !second.Start(context.Background()) {
		t.Fatalf("expected restored session to come up authenticated")
	}

	log := j.log()
	want := "notify:" + i18n.T("auth.welcome_back", "alice")
	if len(log) == 0 || log[len(log)-1] != want {
		t.Fatalf("visible after landing: %v, want %q last", log, want)
	}
}

func TestTransition_ClearsStandingError(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	j := &journalNotifier{}
	a := newTestApp(t, f, j, nil)
	mustLogin(t, a)

	f.Override("GET /users", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})
	if !a.Router.Goto(context.Background(), app.UsersView) {
		t.Fatalf("admin navigation refused")
	}
	failed := "notify:" + i18n.T("error.server")
	log := j.log()
	if len(log) == 0 || log[len(log)-1] != failed {
		t.Fatalf("expected a standing server error, got %v", log)
	}

	// Moving on drops the error; nothing replaces it.
	if !a.Router.Goto(context.Background(), app.ProfileView) {
		t.Fatalf("profile navigation refused")
	}
	log = j.log()
	if log[len(log)-1] != "clear" {
		t.Fatalf("standing error must be cleared by the transition, got %v", log)
	}
}

func TestLogin_EmptyCredentialsStayLocal(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)

	if a.Auth.Login(context.Background(), "  ", "pw") {
		t.Fatalf("expected blank username to be rejected")
	}
	if a.Auth.Login(context.Background(), "alice", "") {
		t.Fatalf("expected empty password to be rejected")
	}
	if len(f.Seen()) != 0 {
		t.Fatalf("local validation must not reach the network: %v", f.Seen())
	}
	if !rec.has(i18n.T("auth.error_missing_credentials")) {
		t.Fatalf("missing credentials notification")
	}
	// Local validation failures surface through the same error taxonomy
	// as request failures.
	if !rec.hasSeverity(model.SeverityError) {
		t.Fatalf("validation failure must surface as an error notification")
	}
}

func TestLogin_BadPassword(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Override("POST /login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "bad credentials"}`)
	})
	a := newTestApp(t, f, &recordingNotifier{}, nil)

	if a.Auth.Login(context.Background(), "alice", "wrong") {
		t.Fatalf("expected login failure")
	}
	if a.Sessions.Token() != "" {
		t.Fatalf("failed login must not leave a token behind")
	}
	if a.Router.Current() != app.LoggedOutView {
		t.Fatalf("expected to stay logged out")
	}
}

func TestLogin_ValidationFailureFailsTheLogin(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Override("GET /validate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": "boom"}`)
	})
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)

	if a.Auth.Login(context.Background(), "alice", "secret") {
		t.Fatalf("expected login to fail when validation fails")
	}
	if a.Sessions.Token() != "" || a.Sessions.IsAuthenticated() {
		t.Fatalf("no partial session may survive a failed validation")
	}
	if a.Router.Current() != app.LoggedOutView {
		t.Fatalf("expected logged-out view, got %s", a.Router.Current())
	}
	if !rec.has(i18n.T("auth.login_failed")) {
		t.Fatalf("missing login failed notification")
	}
}

func TestRegister_DoesNotLogIn(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)

	if !a.Auth.Register(context.Background(), "newbie", "hunter2") {
		t.Fatalf("register failed")
	}
	if a.Sessions.IsAuthenticated() || a.Sessions.Token() != "" {
		t.Fatalf("register must not create a session")
	}
	if a.Router.Current() != app.LoggedOutView {
		t.Fatalf("register must stay on the auth forms")
	}
	if a.Auth.LastRegistered() != "newbie" {
		t.Fatalf("LastRegistered lost: %q", a.Auth.LastRegistered())
	}
	if countSeen(f, "POST /login") != 0 {
		t.Fatalf("register must not attempt a login: %v", f.Seen())
	}
	if !rec.has(i18n.T("auth.register_success")) {
		t.Fatalf("missing register success notification")
	}
}

func TestRegister_LocalLengthChecks(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)

	if a.Auth.Register(context.Background(), "a", "hunter2") {
		t.Fatalf("expected short username to be rejected")
	}
	if a.Auth.Register(context.Background(), "newbie", "abc") {
		t.Fatalf("expected short password to be rejected")
	}
	if len(f.Seen()) != 0 {
		t.Fatalf("length checks must not reach the network: %v", f.Seen())
	}
	if !rec.has(i18n.T("auth.error_username_too_short", 2)) {
		t.Fatalf("missing username length notification")
	}
	if !rec.has(i18n.T("auth.error_password_too_short", 4)) {
		t.Fatalf("missing password length notification")
	}
}

func TestLogout_TearsDownEverything(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)
	mustLogin(t, a)

	a.Auth.Logout(context.Background())

	if a.Sessions.IsAuthenticated() || a.Sessions.Token() != "" {
		t.Fatalf("expected session gone after logout")
	}
	if a.Router.Current() != app.LoggedOutView {
		t.Fatalf("expected logged-out view after logout")
	}
	if !rec.has(i18n.T("auth.logout_success", "alice")) {
		t.Fatalf("missing logout notification")
	}
	// Display state from the session must not leak into the next one.
	if a.Keys.Empty() {
		t.Fatalf("key view state survived the logout")
	}
	// Logout is local; no logout endpoint exists on the service.
	for _, s := range f.Seen() {
		if s == "POST /logout" {
			t.Fatalf("logout must not call the server")
		}
	}
}

func TestForcedLogout_On401(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)
	mustLogin(t, a)

	// The server starts rejecting the token mid-session.
	f.Override("GET /keys", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "invalid token"}`)
	})

	if a.Keys.View(context.Background()) {
		t.Fatalf("expected key load to fail")
	}
	if a.Sessions.IsAuthenticated() || a.Sessions.Token() != "" {
		t.Fatalf("expected session torn down after 401")
	}
	if a.Router.Current() != app.LoggedOutView {
		t.Fatalf("expected logged-out view after 401")
	}
	if !rec.has(i18n.T("auth.session_expired")) {
		t.Fatalf("missing session expired notification")
	}
	// The auth failure itself raises no second notification.
	if rec.has(i18n.T("error.server")) {
		t.Fatalf("auth failures must not double-notify")
	}
}

func TestValidate_WithoutTokenIsLocal(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	a := newTestApp(t, f, &recordingNotifier{}, nil)

	if a.Auth.Validate(context.Background()) {
		t.Fatalf("expected validation to fail without a token")
	}
	if len(f.Seen()) != 0 {
		t.Fatalf("tokenless validation must not reach the network: %v", f.Seen())
	}
}

func TestValidate_RoleDowngradeEvictsDirectory(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Users = []testutil.FakeUser{
		{ID: 1, Username: "alice", Role: "admin", HasKey: true},
	}
	a := newTestApp(t, f, &recordingNotifier{}, nil)
	mustLogin(t, a)

	if !a.Router.Goto(context.Background(), app.UsersView) {
		t.Fatalf("admin could not enter the directory")
	}

	// The next validation reports the admin role revoked.
	f.Override("GET /validate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"valid": true, "user_id": 1, "username": "alice", "role": "user"}`)
	})
	if !a.Auth.Validate(context.Background()) {
		t.Fatalf("validation should still succeed")
	}
	if a.Router.Current() != app.KeysView {
		t.Fatalf("expected eviction to keys view, got %s", a.Router.Current())
	}
	user, _ := a.Sessions.User()
	if user.IsAdmin() {
		t.Fatalf("downgraded role not applied")
	}
}

func TestStart_RestoresPersistedSession(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	dir := t.TempDir()
	rec := &recordingNotifier{}

	first := app.New(app.Options{BaseURL: f.URL(), StateDir: dir, RevalidateInterval: time.Hour})
	if !first.Auth.Login(context.Background(), "alice", "secret") {
		t.Fatalf("seed login failed")
	}
	first.Close()

	second := app.New(app.Options{BaseURL: f.URL(), StateDir: dir, Notifier: rec, RevalidateInterval: time.Hour})
	defer second.Close()
	if !second.Start(context.Background()) {
		t.Fatalf("expected restored session to come up authenticated")
	}
	if second.Router.Current() != app.KeysView {
		t.Fatalf("expected restored session to land on keys")
	}
	if !rec.has(i18n.T("auth.welcome_back", "alice")) {
		t.Fatalf("missing welcome back notification")
	}
}

func TestStart_NoPersistedSession(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	a := newTestApp(t, f, &recordingNotifier{}, nil)

	if a.Start(context.Background()) {
		t.Fatalf("expected logged-out start")
	}
	if a.Router.Current() != app.LoggedOutView {
		t.Fatalf("expected logged-out view")
	}
	if len(f.Seen()) != 0 {
		t.Fatalf("no token, no network: %v", f.Seen())
	}
}

func TestNotificationSeverities(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)

	mustLogin(t, a)
	if !rec.hasSeverity(model.SeveritySuccess) {
		t.Fatalf("login success should be a success notification")
	}
	a.Auth.Logout(context.Background())
	if !rec.hasSeverity(model.SeverityInfo) {
		t.Fatalf("logout should be an info notification")
	}
}
