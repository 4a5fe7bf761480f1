// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"strings"
	"testing"
)

func TestT_English(t *testing.T) {
	Init("en")
	got := T("auth.login_failed")
	if got == "" || got == "auth.login_failed" {
		t.Fatalf("expected an English translation, got %q", got)
	}
}

func TestT_UnknownIDFallsBackToID(t *testing.T) {
	Init("en")
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("expected ID passthrough, got %q", got)
	}
}

func TestT_FormatsArgs(t *testing.T) {
	Init("en")
	got := T("auth.login_success", "alice")
	if !strings.Contains(got, "alice") {
		t.Fatalf("argument not applied: %q", got)
	}
}

func TestSetLang_Korean(t *testing.T) {
	Init("en")
	en := T("keys.title")
	SetLang("ko")
	ko := T("keys.title")
	if ko == "" || ko == "keys.title" {
		t.Fatalf("expected a Korean translation, got %q", ko)
	}
	if ko == en {
		t.Fatalf("expected Korean to differ from English for keys.title")
	}
	SetLang("en")
	if T("keys.title") != en {
		t.Fatalf("switching back to English lost the catalog")
	}
}

func TestT_UninitializedDefaultsToEnglish(t *testing.T) {
	localizer = nil
	if got := T("auth.login_failed"); got == "auth.login_failed" || got == "" {
		t.Fatalf("expected lazy English init, got %q", got)
	}
}
