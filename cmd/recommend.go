// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/httperrors"
)

// recommendCmd represents the recommend command for showing personalized
// card recommendations from the backend.
var recommendCmd = &cobra.Command{
	Use:     "recommend",
	Aliases: []string{"recommendations"},
	Short:   "Show personalized card recommendations",
	Long: `The recommend command asks the Cardline service for card suggestions
based on your spending profile. When Gmail insights are enabled in your
settings the backend also folds purchase signals from your inbox into the
recommendations; this all happens server-side.`,

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

		stopSpinner := startWaitSpinner("Finding cards for you")
		recs, err := a.backend.GetRecommendations(ctx)
		stopSpinner()
		if err != nil {
			if cerr.Is(err, cerr.Unauthorized) {
				return a.refreshAfter401(ctx, err)
			}
			return httperrors.FormatNetworkError(err, "fetching recommendations")
		}

		if len(recs) == 0 {
			pterm.Println("No recommendations right now. Check back after a few more transactions.")
			return nil
		}

		for _, r := range recs {
			body := r.Reason
			if r.RewardRate != "" {
				body += fmt.Sprintf("\n\nRewards: %s", r.RewardRate)
			}
			if r.AnnualFee > 0 {
				body += fmt.Sprintf("\nAnnual fee: %.2f", r.AnnualFee)
			} else {
				body += "\nNo annual fee"
			}
			if r.ApplyURL != "" {
				body += fmt.Sprintf("\nApply: %s", r.ApplyURL)
			}

			title := r.CardName
			if r.Issuer != "" {
				title += " · " + r.Issuer
			}
			pterm.DefaultBox.
				WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(title)).
				WithTopPadding(1).
			WithBottomPadding(1).
			WithLeftPadding(1).
			WithRightPadding(1).
				Println(body)
			pterm.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}
