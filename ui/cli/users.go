// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/model"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Browse the user directory (admin only)",
	}
	cmd.AddCommand(newUsersListCmd(), newUsersShowCmd(), newUsersDeleteCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	var filter string
	var sortBy string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := newAuthenticatedCore(cmd)
			if err != nil {
				return err
			}
			core.Directory.SetFilter(filter)
			core.Directory.SetSort(app.SortField(sortBy))
			if !core.Directory.Load(cmd.Context()) {
				return fmt.Errorf("could not load the user directory")
			}

			stats := core.Directory.Stats()
			fmt.Printf("%-5s %-24s %-6s %-4s %s\n", "ID", "USERNAME", "ROLE", "KEY", "CREATED")
			for _, u := range core.Directory.Users() {
				keyMark := "-"
				if u.HasSSHKey {
					keyMark = "yes"
				}
				created := ""
				if !u.CreatedAt.IsZero() {
					created = u.CreatedAt.Format("2006-01-02")
				}
				fmt.Printf("%-5d %-24s %-6s %-4s %s\n", u.ID, u.Username, u.Role, keyMark, created)
			}
			fmt.Printf("\n%d users, %d with keys (%d%% coverage)\n", stats.Total, stats.WithKeys, stats.Coverage)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Only list usernames containing this substring")
	cmd.Flags().StringVar(&sortBy, "sort", string(app.SortByUsername), `Sort order: "username", "created" or "id"`)
	return cmd
}

func newUsersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one user's detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			core, err := newAuthenticatedCore(cmd)
			if err != nil {
				return err
			}
			profile, ok := core.Directory.Detail(cmd.Context(), id)
			if !ok {
				return fmt.Errorf("could not load user %d", id)
			}
			printProfile(profile)
			return nil
		},
	}
}

func newUsersDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user account",
		Long: `Deletes a user from the service. Admin accounts are refused. The
command asks for confirmation unless --yes is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			core, err := newAuthenticatedCore(cmd)
			if err != nil {
				return err
			}
			// The confirmation prompt and the admin-target refusal both
			// need the username.
			profile, ok := core.Directory.Detail(cmd.Context(), id)
			if !ok {
				return fmt.Errorf("could not load user %d", id)
			}
			if !core.Directory.Delete(cmd.Context(), id, profile.Username) {
				return fmt.Errorf("user deletion did not complete")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func printProfile(p model.Profile) {
	fmt.Printf("id:       %d\n", p.ID)
	fmt.Printf("username: %s\n", p.Username)
	fmt.Printf("role:     %s\n", p.Role)
	if !p.CreatedAt.IsZero() {
		fmt.Printf("created:  %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
	}
	if p.Key != nil {
		fmt.Printf("key:      %s %d", p.Key.Algorithm, p.Key.Bits)
		if p.Key.Fingerprint != "" {
			fmt.Printf(" (%s)", p.Key.Fingerprint)
		}
		fmt.Println()
	} else {
		fmt.Println("key:      none")
	}
}
