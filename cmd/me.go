// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/httperrors"
)

// meCmd represents the me command for verifying the session with the
// backend. Unlike whoami, which reads only local state, me performs an
// authenticated GET /me and shows what the backend knows about the account.
var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Verify the session with the backend and show account details",
	Long: `The me command validates the current session by fetching your account
from the Cardline service. A valid session prints the account details the
backend holds; a rejected session clears the stored credentials and asks
you to sign in again.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		if err := a.requireSession(); err != nil {
			fmt.Println("🔒 You're not signed in yet!")
			fmt.Println("   Run 'cardline login' to get started.")
			return nil
		}

		me, err := a.backend.GetMe(ctx)
		if err != nil {
			if cerr.Is(err, cerr.Unauthorized) {
				return a.refreshAfter401(ctx, err)
			}
			return httperrors.FormatNetworkError(err, "verifying your session")
		}

		if email, ok := me["email"].(string); ok && email != "" {
			fmt.Printf("👤 Current user: %s\n", email)
		} else if p := a.sessions.Profile(); p != nil {
			fmt.Printf("👤 Current user: %s\n", p.Email)
		}
		if name, ok := me["name"].(string); ok && name != "" {
			fmt.Printf("   Name: %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(meCmd)
}
