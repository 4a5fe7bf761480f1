// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"runtime/debug"
	"testing"

	"github.com/gphunter1004/skm/buildvars"
)

func TestResolveBuildVersion_ModuleVersionWins(t *testing.T) {
	info := &debug.BuildInfo{}
	info.Main.Version = "v1.2.3"
	if got := resolveBuildVersion(info); got != "v1.2.3" {
		t.Fatalf("expected module version, got %q", got)
	}
}

func TestResolveBuildVersion_DevelFallsBackToRevision(t *testing.T) {
	info := &debug.BuildInfo{}
	info.Main.Version = "(devel)"
	info.Settings = []debug.BuildSetting{{Key: "vcs.revision", Value: "abc1234"}}
	if got := resolveBuildVersion(info); got != "abc1234" {
		t.Fatalf("expected vcs revision, got %q", got)
	}
}

func TestResolveBuildVersion_LinkerVariableWins(t *testing.T) {
	old := buildvars.Version
	buildvars.Version = "v9.9.9"
	defer func() { buildvars.Version = old }()

	info := &debug.BuildInfo{}
	info.Main.Version = "(devel)"
	if got := resolveBuildVersion(info); got != "v9.9.9" {
		t.Fatalf("expected linker-injected version, got %q", got)
	}
}

func TestNewRootCmd_Structure(t *testing.T) {
	cmd := NewRootCmd()
	if cmd.Use != "skm" {
		t.Fatalf("unexpected root use: %q", cmd.Use)
	}

	want := map[string]bool{
		"login":    false,
		"logout":   false,
		"register": false,
		"keys":     false,
		"users":    false,
		"profile":  false,
		"version":  false,
	}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}

	for _, flag := range []string{"verbose", "config", "server.url", "language"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("missing persistent flag %q", flag)
		}
	}
}
