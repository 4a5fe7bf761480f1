// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for the skm client using the
// Cobra library. It defines the root command, which launches the TUI, the
// headless subcommands, and the shared service setup.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gphunter1004/skm/buildvars"
	"github.com/gphunter1004/skm/internal/api"
	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/config"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/logging"
	"github.com/gphunter1004/skm/internal/tui"
)

var version = "dev" // this will be set by the linker
var cfgFile string
var verbose bool
var assumeYes bool
var jsonOutput bool

var appConfig config.Config

// setupDefaultServices loads configuration and initializes translations.
// It runs before every command.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	explicitPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.Load(cmd, explicitPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// First run, or the config file was deleted. Create a default one.
		if writeErr := config.Write(&appConfig, false); writeErr != nil {
			log.Warnf("could not write default config file: %v", writeErr)
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logging.SetDebug(verbose || appConfig.Debug)
	i18n.Init(appConfig.Language)
	return nil
}

// buildAppOptions translates the resolved config into application wiring.
func buildAppOptions() (app.Options, error) {
	stateDir, err := config.StateDir()
	if err != nil {
		return app.Options{}, err
	}
	modes, err := api.ParseUnwrapModes(appConfig.API.Unwrap)
	if err != nil {
		return app.Options{}, err
	}
	return app.Options{
		BaseURL:            appConfig.Server.URL,
		StateDir:           stateDir,
		UnwrapModes:        modes,
		ValidatePath:       appConfig.Validate.Path,
		UsersListPath:      appConfig.Users.Path,
		RevalidateInterval: appConfig.Session.RevalidateInterval,
		RequestTimeout:     appConfig.Server.Timeout,
	}, nil
}

// Execute runs the CLI entrypoint. The root main package should call this
// function and handle process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (string, error) {
	if !cmd.Flags().Changed("config") {
		return "", nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return path, nil
}

// NewRootCmd creates and configures a new root cobra command. Used for the
// main application as well as fresh instances in tests.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skm",
		Short: "skm is a terminal client for the SSH Key Manager service.",
		Long: `skm talks to an SSH Key Manager REST service: it logs you in,
manages your server-generated SSH key pair, and (for admins) browses
the user directory.

Running without a subcommand launches the interactive TUI.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupDefaultServices(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildAppOptions()
			if err != nil {
				return err
			}
			// The TUI owns the terminal; logs would tear the frame.
			logging.SetOutput(io.Discard)
			tui.Run(opts)
			return nil
		},
	}

	cmd.Version = resolveBuildVersion(nil)

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("server.url", "", "Base URL of the key manager service")
	cmd.PersistentFlags().String("language", "", `Output language ("en", "ko")`)

	cmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRegisterCmd(),
		newKeysCmd(),
		newUsersCmd(),
		newProfileCmd(),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("version: %s\n", resolveBuildVersion(nil))
		},
	}
}

// resolveBuildVersion computes the best-available version for the running
// binary. If `info` is nil, it reads build info from the runtime. Separated
// to make unit testing straightforward.
func resolveBuildVersion(info *debug.BuildInfo) string {
	resolved := buildvars.VersionOrDefault(version)

	if info == nil {
		if infoLocal, found := debug.ReadBuildInfo(); found {
			info = infoLocal
		}
	}
	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolved = info.Main.Version
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" && resolved == "dev" {
				resolved = s.Value
			}
		}
	}
	return resolved
}
