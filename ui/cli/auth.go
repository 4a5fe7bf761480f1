// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptCredentials collects a username and password, reading the password
// without echo when stdin is a terminal.
func promptCredentials(username string) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		username = strings.TrimSpace(line)
	}

	var password string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", "", err
		}
		password = string(bytePassword)
	} else {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		password = strings.TrimRight(line, "\r\n")
	}
	return username, password, nil
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate against the key manager service",
		Long: `Logs in and stores the session token for subsequent commands.
The password is read from the terminal without echo; when stdin is not a
terminal it is read as a single line, so scripts can pipe it in.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var username string
			if len(args) > 0 {
				username = args[0]
			}
			username, password, err := promptCredentials(username)
			if err != nil {
				return err
			}

			core, err := newCore()
			if err != nil {
				return err
			}
			if !core.Auth.Login(cmd.Context(), username, password) {
				return fmt.Errorf("login failed")
			}
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := newCore()
			if err != nil {
				return err
			}
			if err := core.Sessions.Restore(); err != nil {
				return err
			}
			if core.Sessions.Token() == "" {
				fmt.Println("no active session")
				return nil
			}
			core.Auth.Logout(cmd.Context())
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [username]",
		Short: "Create a new account",
		Long: `Creates an account on the key manager service. Registration never
logs you in; run 'skm login' afterwards.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var username string
			if len(args) > 0 {
				username = args[0]
			}
			username, password, err := promptCredentials(username)
			if err != nil {
				return err
			}

			core, err := newCore()
			if err != nil {
				return err
			}
			if !core.Auth.Register(cmd.Context(), username, password) {
				return fmt.Errorf("registration failed")
			}
			return nil
		},
	}
}
