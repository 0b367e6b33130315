// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command for clearing the stored session.
// It removes the session token, cached profile and provider tokens from the
// OS keychain. Running it while already signed out is harmless.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove stored credentials",
	Long: `The logout command removes all Cardline credentials from this machine:

- The session token from the OS keychain
- The cached user profile
- The Google access and refresh tokens

It does not contact the backend; the stored session simply stops being used.
Running logout while already signed out succeeds without complaint.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		wasSignedIn := a.sessions.IsAuthenticated()
		if err := a.sessions.SignOut(cmd.Context()); err != nil {
			return err
		}

		if wasSignedIn {
			fmt.Println("✅ Signed out; all credentials have been removed")
		} else {
			fmt.Println("Already signed out; nothing to remove")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
