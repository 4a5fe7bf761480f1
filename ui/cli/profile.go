// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your own account",
	}
	cmd.AddCommand(newProfileShowCmd(), newProfileUpdateCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := newAuthenticatedCore(cmd)
			if err != nil {
				return err
			}
			if !core.Profile.Load(cmd.Context()) {
				return fmt.Errorf("could not load profile")
			}
			profile, ok := core.Profile.Current()
			if !ok {
				return fmt.Errorf("could not load profile")
			}
			printProfile(profile)
			return nil
		},
	}
}

func newProfileUpdateCmd() *cobra.Command {
	var username string
	var changePassword bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your username and/or password",
		Long: `Updates your account. Pass --username to rename, --password to be
prompted for a new password. Fields you leave out stay unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if changePassword {
				if term.IsTerminal(int(os.Stdin.Fd())) {
					fmt.Print("New password: ")
					bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
					fmt.Println()
					if err != nil {
						return err
					}
					password = string(bytePassword)
				} else {
					return fmt.Errorf("--password requires an interactive terminal")
				}
			}

			core, err := newAuthenticatedCore(cmd)
			if err != nil {
				return err
			}
			if !core.Profile.Update(cmd.Context(), username, password) {
				return fmt.Errorf("profile update did not complete")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().BoolVar(&changePassword, "password", false, "Prompt for a new password")
	return cmd
}
