// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateLine(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten..", 13, "exactly ten.."},
		{"a longer line that will not fit", 10, "a longe..."},
		{"abcdef", 2, "ab"},
	}
	for _, c := range cases {
		if got := truncateLine(c.in, c.width); got != c.want {
			t.Fatalf("truncateLine(%q, %d) = %q, want %q", c.in, c.width, got, c.want)
		}
	}
}

func TestTruncateLine_MultibyteSafe(t *testing.T) {
	in := "명령어를 복사해서 서버에 붙여넣으세요"
	got := truncateLine(in, 10)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected an ellipsis, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 10 {
		t.Fatalf("expected 10 runes, got %d in %q", n, got)
	}
}
