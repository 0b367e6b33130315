package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// whoamiCmd represents the whoami command for displaying the current session.
// It reads the restored session context and shows the cached identity without
// contacting the backend, so it also works offline.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently signed-in account",
	Long: `The whoami command displays the account this machine is signed in as,
based on the session stored in the OS keychain. It does not contact the
backend, so it works offline; an expired session is only detected when the
next data command hits the API.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		if !a.sessions.IsAuthenticated() {
			fmt.Println("🔒 You're not signed in yet!")
			fmt.Println("   Run 'cardline login' to get started.")
			return nil
		}

		p := a.sessions.Profile()
		if p.Name != "" {
			fmt.Printf("👤 Signed in as %s (%s)\n", p.Name, p.Email)
		} else {
			fmt.Printf("👤 Signed in as %s\n", p.Email)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
