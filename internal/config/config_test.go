// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gphunter1004/skm/internal/config"
)

// loadNoFile runs Load where no config file exists and tolerates the
// first-run sentinel.
func loadNoFile(t *testing.T, cmd *cobra.Command) config.Config {
	t.Helper()
	got, err := config.Load(cmd, "")
	if err != nil && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		t.Fatalf("Load returned error: %v", err)
	}
	return got
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got, err := config.Load(&cobra.Command{}, "")
	if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		t.Fatalf("expected ConfigFileNotFoundError sentinel, got: %v", err)
	}
	if got.Server.URL != "http://localhost:8080/api" {
		t.Fatalf("expected default server URL, got %q", got.Server.URL)
	}
	if got.Server.Timeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %v", got.Server.Timeout)
	}
	if got.Language != "en" {
		t.Fatalf("expected language en, got %q", got.Language)
	}
	if got.Session.RevalidateInterval != 5*time.Minute {
		t.Fatalf("expected 5m revalidate interval, got %v", got.Session.RevalidateInterval)
	}
	if got.Users.Path != "/users" || got.Validate.Path != "/validate" {
		t.Fatalf("unexpected default paths: %q %q", got.Users.Path, got.Validate.Path)
	}
}

func TestLoad_ReadsExplicitFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	yaml := "server:\n  url: https://keys.example.com/api/\nlanguage: ko\napi:\n  unwrap:\n    /keys: raw\n"
	file := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := config.Load(&cobra.Command{}, file)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.Server.URL != "https://keys.example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", got.Server.URL)
	}
	if got.Language != "ko" {
		t.Fatalf("expected ko, got %q", got.Language)
	}
	if got.API.Unwrap["/keys"] != "raw" {
		t.Fatalf("expected unwrap map entry, got %v", got.API.Unwrap)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SKM_SERVER_URL", "http://10.0.0.5:9000/api")
	t.Setenv("SKM_LANGUAGE", "ko")

	got := loadNoFile(t, &cobra.Command{})
	if got.Server.URL != "http://10.0.0.5:9000/api" {
		t.Fatalf("expected env server URL, got %q", got.Server.URL)
	}
	if got.Language != "ko" {
		t.Fatalf("expected env language, got %q", got.Language)
	}
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SKM_LANGUAGE", "ko")

	cmd := &cobra.Command{}
	cmd.Flags().String("language", "en", "")
	if err := cmd.Flags().Set("language", "de"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	got := loadNoFile(t, cmd)
	if got.Language != "de" {
		t.Fatalf("expected flag to win over env, got %q", got.Language)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var c config.Config
	c.Server.URL = "https://keys.example.com/api"
	c.Server.Timeout = 30 * time.Second
	c.Language = "ko"

	if err := config.Write(&c, false); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	dir, err := config.StateDir()
	if err != nil {
		t.Fatalf("StateDir failed: %v", err)
	}
	path := filepath.Join(dir, "skm.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s, stat error: %v", path, err)
	}

	got, err := config.Load(&cobra.Command{}, path)
	if err != nil {
		t.Fatalf("Load after Write returned error: %v", err)
	}
	if got.Server.URL != c.Server.URL {
		t.Fatalf("expected %q back, got %q", c.Server.URL, got.Server.URL)
	}
	if got.Language != "ko" {
		t.Fatalf("expected ko back, got %q", got.Language)
	}
}
