// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the client configuration. Everything here can come from the
// config file, an SKM_ environment variable, or a CLI flag, in ascending
// precedence.
type Config struct {
	Server struct {
		URL     string        `mapstructure:"url" yaml:"url"`
		Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	} `mapstructure:"server" yaml:"server"`

	Language string `mapstructure:"language" yaml:"language"`
	Debug    bool   `mapstructure:"debug" yaml:"debug"`

	Session struct {
		RevalidateInterval time.Duration `mapstructure:"revalidate_interval" yaml:"revalidate_interval"`
	} `mapstructure:"session" yaml:"session"`

	API struct {
		// Unwrap maps endpoint path prefixes to a response unwrap mode:
		// "raw", "data" or "auto".
		Unwrap map[string]string `mapstructure:"unwrap" yaml:"unwrap,omitempty"`
	} `mapstructure:"api" yaml:"api"`

	Users struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"users" yaml:"users"`

	Validate struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"validate" yaml:"validate"`
}

// Defaults returns the baseline configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"server.url":                  "http://localhost:8080/api",
		"server.timeout":              "15s",
		"language":                    "en",
		"debug":                       false,
		"session.revalidate_interval": "5m",
		"users.path":                  "/users",
		"validate.path":               "/validate",
	}
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "skm")
		default:
			configDir = "/etc/skm"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "skm")
	}

	return filepath.Join(configDir, "skm.yaml"), nil
}

// StateDir returns the directory where per-user client state (the session
// token) lives, next to the config file.
func StateDir() (string, error) {
	path, err := getConfigPath(false)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Load resolves the configuration for cmd. Precedence, lowest to highest:
// defaults, skm.yaml (explicit --config path, then user dir, then /etc/skm,
// then the working directory), SKM_ environment variables, CLI flags.
// When no config file exists the returned Config is still fully usable and
// err is a viper.ConfigFileNotFoundError.
func Load(cmd *cobra.Command, explicitPath string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("skm")
	v.SetConfigType("yaml")

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	}

	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		// A missing file still yields a usable config from defaults, env
		// and flags. The caller gets the sentinel so it can write a
		// default file on first run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
		notFound = err
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("skm")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	c.Server.URL = strings.TrimRight(c.Server.URL, "/")
	return c, notFound
}

// Write persists c as the user (or system) config file.
func Write(c *Config, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600 because the file may name internal hosts.
	return os.WriteFile(path, data, 0600)
}
