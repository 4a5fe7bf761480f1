// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/model"
)

// keyJSON is the machine-readable rendition of a key record.
type keyJSON struct {
	Algorithm   string `json:"algorithm"`
	Bits        int    `json:"bits"`
	PublicKey   string `json:"public_key"`
	PEM         string `json:"private_key_pem,omitempty"`
	PPK         string `json:"private_key_ppk,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage your server-generated SSH key pair",
	}
	cmd.AddCommand(newKeysShowCmd(), newKeysGenerateCmd(), newKeysDeleteCmd())
	return cmd
}

func newKeysShowCmd() *cobra.Command {
	var showInstall bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := newAuthenticatedCore(cmd)
			if err != nil {
				return err
			}
			if !core.Keys.View(cmd.Context()) {
				return fmt.Errorf("could not load key")
			}
			rec, ok := core.Keys.Current()
			if !ok {
				fmt.Println("no key on record; run 'skm keys generate'")
				return nil
			}
			if jsonOutput {
				return printKeyJSON(rec)
			}
			printKey(rec)
			if showInstall {
				printInstallCommands(app.InstallCommandsFor(rec))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the key record as JSON")
	cmd.Flags().BoolVar(&showInstall, "install", false, "Also print shell commands to install the key material")
	return cmd
}

func newKeysGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key pair on the server",
		Long: `Asks the service to generate a key pair. An existing pair is replaced,
so the command asks for confirmation unless --yes is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := newAuthenticatedCore(cmd)
			if err != nil {
				return err
			}
			if !core.Keys.Create(cmd.Context()) {
				return fmt.Errorf("key generation did not complete")
			}
			rec, ok := core.Keys.Current()
			if !ok {
				return nil
			}
			if jsonOutput {
				return printKeyJSON(rec)
			}
			printKey(rec)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the new key record as JSON")
	return cmd
}

func newKeysDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the stored key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := newAuthenticatedCore(cmd)
			if err != nil {
				return err
			}
			if !core.Keys.Delete(cmd.Context()) {
				return fmt.Errorf("key deletion did not complete")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func printKey(rec model.KeyRecord) {
	fmt.Printf("algorithm:   %s\n", rec.Algorithm)
	fmt.Printf("bits:        %d\n", rec.Bits)
	if rec.Fingerprint != "" {
		fmt.Printf("fingerprint: %s\n", rec.Fingerprint)
	}
	if !rec.CreatedAt.IsZero() {
		fmt.Printf("created:     %s\n", rec.CreatedAt.Format("2006-01-02 15:04"))
	}
	if rec.PublicKey != "" {
		fmt.Printf("\n%s\n", rec.PublicKey)
	}
}

func printKeyJSON(rec model.KeyRecord) error {
	out := keyJSON{
		Algorithm:   rec.Algorithm,
		Bits:        rec.Bits,
		PublicKey:   rec.PublicKey,
		PEM:         rec.PEMPrivateKey,
		PPK:         rec.PPKPrivateKey,
		Fingerprint: rec.Fingerprint,
	}
	if !rec.CreatedAt.IsZero() {
		out.CreatedAt = rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printInstallCommands(cmds app.InstallCommands) {
	entries := []struct {
		label string
		cmd   string
	}{
		{"public key", cmds.PublicKey},
		{"authorized_keys", cmds.AuthorizedKeys},
		{"private key (PEM)", cmds.PEM},
		{"private key (PPK)", cmds.PPK},
	}
	fmt.Println("\ninstall commands:")
	for _, e := range entries {
		if e.cmd == "" {
			continue
		}
		fmt.Printf("# %s\n%s\n", e.label, e.cmd)
	}
}
