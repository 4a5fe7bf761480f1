// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app_test

import (
	"context"
	"testing"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/testutil"
)

func directoryFixture() []testutil.FakeUser {
	return []testutil.FakeUser{
		{ID: 3, Username: "alice", Role: "admin", HasKey: true},
		{ID: 1, Username: "bob", Role: "user", HasKey: false},
		{ID: 2, Username: "carol", Role: "user", HasKey: true},
	}
}

func TestDirectory_NonAdminRefusedLocally(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.User.Role = "user"
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, nil)
	mustLogin(t, a)

	if a.Directory.Load(context.Background()) {
		t.Fatalf("non-admin load must be refused")
	}
	if countSeen(f, "GET /users") != 0 {
		t.Fatalf("refused load reached the network: %v", f.Seen())
	}
	if !rec.has(i18n.T("router.admin_only")) {
		t.Fatalf("missing admin-only notification")
	}

	if a.Router.Goto(context.Background(), app.UsersView) {
		t.Fatalf("non-admin navigation must be refused")
	}
	if a.Router.Current() == app.UsersView {
		t.Fatalf("router entered a denied view")
	}
}

func TestDirectory_RoleUpgradeUnlocksNavigation(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.User.Role = "user"
	f.Users = directoryFixture()
	a := newTestApp(t, f, &recordingNotifier{}, nil)
	mustLogin(t, a)

	if a.Router.Goto(context.Background(), app.UsersView) {
		t.Fatalf("navigation must be refused while role is user")
	}

	// The account is promoted server-side; the next validation picks it up.
	f.User.Role = "admin"
	if !a.Auth.Validate(context.Background()) {
		t.Fatalf("revalidation failed")
	}
	if !a.Router.Goto(context.Background(), app.UsersView) {
		t.Fatalf("admin navigation still refused after revalidation")
	}
	if a.Router.Current() != app.UsersView {
		t.Fatalf("router did not land on the directory, got %s", a.Router.Current())
	}
	if !a.Directory.Loaded() {
		t.Fatalf("entering the directory must load it")
	}
	if countSeen(f, "GET /users") != 1 {
		t.Fatalf("expected one directory load, saw %v", f.Seen())
	}
}

func TestDirectory_LoadFilterSort(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Users = directoryFixture()
	a := newTestApp(t, f, &recordingNotifier{}, nil)
	mustLogin(t, a)

	if !a.Directory.Load(context.Background()) {
		t.Fatalf("load failed")
	}
	if !a.Directory.Loaded() {
		t.Fatalf("Loaded not set")
	}

	names := func() []string {
		var out []string
		for _, u := range a.Directory.Users() {
			out = append(out, u.Username)
		}
		return out
	}

	// Default ordering is by username.
	if got := names(); len(got) != 3 || got[0] != "alice" || got[1] != "bob" || got[2] != "carol" {
		t.Fatalf("unexpected username order: %v", got)
	}

	a.Directory.SetSort(app.SortByID)
	if got := names(); got[0] != "bob" || got[1] != "carol" || got[2] != "alice" {
		t.Fatalf("unexpected id order: %v", got)
	}

	a.Directory.SetFilter("O")
	if got := names(); len(got) != 2 || got[0] != "bob" || got[1] != "carol" {
		t.Fatalf("filter must be case-insensitive: %v", got)
	}

	a.Directory.SetFilter("")
	if got := names(); len(got) != 3 {
		t.Fatalf("empty filter must show everyone: %v", got)
	}
}

func TestDirectory_SortCycle(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	a := newTestApp(t, f, &recordingNotifier{}, nil)

	if a.Directory.Sort() != app.SortByUsername {
		t.Fatalf("expected username as initial ordering")
	}
	a.Directory.SetSort(a.Directory.NextSort())
	if a.Directory.Sort() != app.SortByCreated {
		t.Fatalf("expected created after username")
	}
	a.Directory.SetSort(a.Directory.NextSort())
	if a.Directory.Sort() != app.SortByID {
		t.Fatalf("expected id after created")
	}
	a.Directory.SetSort(a.Directory.NextSort())
	if a.Directory.Sort() != app.SortByUsername {
		t.Fatalf("expected cycle back to username")
	}
}

func TestDirectory_Stats(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Users = directoryFixture()
	a := newTestApp(t, f, &recordingNotifier{}, nil)
	mustLogin(t, a)

	if !a.Directory.Load(context.Background()) {
		t.Fatalf("load failed")
	}
	stats := a.Directory.Stats()
	if stats.Total != 3 || stats.WithKeys != 2 || stats.Coverage != 66 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// Stats ignore the filter.
	a.Directory.SetFilter("carol")
	if got := a.Directory.Stats(); got.Total != 3 {
		t.Fatalf("filter leaked into stats: %+v", got)
	}
}

func TestDirectory_Detail(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Users = directoryFixture()
	a := newTestApp(t, f, &recordingNotifier{}, nil)
	mustLogin(t, a)

	p, ok := a.Directory.Detail(context.Background(), 2)
	if !ok {
		t.Fatalf("detail failed")
	}
	if p.Username != "carol" || p.ID != 2 {
		t.Fatalf("wrong detail: %+v", p)
	}

	if _, ok := a.Directory.Detail(context.Background(), 99); ok {
		t.Fatalf("expected missing user detail to fail")
	}
}

func TestDirectory_DeleteAdminRefused(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Users = directoryFixture()
	rec := &recordingNotifier{}
	confirm := &confirmStub{answer: true}
	a := newTestApp(t, f, rec, confirm)
	mustLogin(t, a)

	if !a.Directory.Load(context.Background()) {
		t.Fatalf("load failed")
	}
	if a.Directory.Delete(context.Background(), 3, "alice") {
		t.Fatalf("deleting an admin must be refused")
	}
	if confirm.asked() != 0 {
		t.Fatalf("the refusal comes before the confirmation prompt")
	}
	if countSeen(f, "DELETE /admin/users/3") != 0 {
		t.Fatalf("refused delete reached the network: %v", f.Seen())
	}
	if !rec.has(i18n.T("users.error_delete_admin")) {
		t.Fatalf("missing admin delete notification")
	}
}

func TestDirectory_DeleteAdminRefusedWithoutPriorLoad(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Users = directoryFixture()
	rec := &recordingNotifier{}
	confirm := &confirmStub{answer: true}
	a := newTestApp(t, f, rec, confirm)
	mustLogin(t, a)

	// No listing loaded yet; the guard must not be skipped.
	if a.Directory.Delete(context.Background(), 3, "alice") {
		t.Fatalf("deleting an admin must be refused")
	}
	if confirm.asked() != 0 {
		t.Fatalf("the refusal comes before the confirmation prompt")
	}
	if countSeen(f, "DELETE /admin/users/3") != 0 {
		t.Fatalf("refused delete reached the network: %v", f.Seen())
	}
	if !rec.has(i18n.T("users.error_delete_admin")) {
		t.Fatalf("missing admin delete notification")
	}
}

func TestDirectory_DeleteRechecksRoleAgainstFreshListing(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Users = directoryFixture()
	rec := &recordingNotifier{}
	confirm := &confirmStub{answer: true}
	a := newTestApp(t, f, rec, confirm)
	mustLogin(t, a)

	if !a.Directory.Load(context.Background()) {
		t.Fatalf("load failed")
	}
	// bob is promoted server-side after the listing was cached.
	f.Users[1].Role = "admin"
	if a.Directory.Delete(context.Background(), 1, "bob") {
		t.Fatalf("deleting a freshly promoted admin must be refused")
	}
	if confirm.asked() != 0 {
		t.Fatalf("the refusal comes before the confirmation prompt")
	}
	if countSeen(f, "DELETE /admin/users/1") != 0 {
		t.Fatalf("refused delete reached the network: %v", f.Seen())
	}
}

func TestDirectory_DeleteRoundTrip(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Users = directoryFixture()
	rec := &recordingNotifier{}
	a := newTestApp(t, f, rec, &confirmStub{answer: true})
	mustLogin(t, a)

	if !a.Directory.Load(context.Background()) {
		t.Fatalf("load failed")
	}
	if !a.Directory.Delete(context.Background(), 1, "bob") {
		t.Fatalf("delete failed")
	}
	// The listing refreshes after the delete.
	for _, u := range a.Directory.Users() {
		if u.Username == "bob" {
			t.Fatalf("deleted user still listed")
		}
	}
	if !rec.has(i18n.T("users.delete_success", "bob")) {
		t.Fatalf("missing delete notification")
	}
}

func TestDirectory_DeleteDeclined(t *testing.T) {
	f := testutil.NewFakeService()
	defer f.Close()
	f.Users = directoryFixture()
	a := newTestApp(t, f, &recordingNotifier{}, &confirmStub{answer: false})
	mustLogin(t, a)

	if !a.Directory.Load(context.Background()) {
		t.Fatalf("load failed")
	}
	if a.Directory.Delete(context.Background(), 1, "bob") {
		t.Fatalf("declined delete must not run")
	}
	if countSeen(f, "DELETE /admin/users/1") != 0 {
		t.Fatalf("declined delete reached the network: %v", f.Seen())
	}
}
