// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cardline/cli/internal/api"
	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/httperrors"
)

// cardsCmd represents the cards command for listing the user's cards.
var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List your cards with balances and limits",
	Long: `The cards command fetches your cards from the Cardline service and shows
them in a table: card name, network, masked number, current balance and
credit limit. Card numbers are never shown in full; only the last four
digits appear.`,

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

		stopSpinner := startWaitSpinner("Fetching your cards")
		cards, err := a.backend.GetCards(ctx)
		stopSpinner()
		if err != nil {
			if cerr.Is(err, cerr.Unauthorized) {
				return a.refreshAfter401(ctx, err)
			}
			return httperrors.FormatNetworkError(err, "fetching your cards")
		}

		if len(cards) == 0 {
			pterm.Println("No cards yet. Add one in the Cardline app to see it here.")
			return nil
		}

		renderCards(cards)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cardsCmd)
}

// renderCards prints the card list as a table with an amount column aligned
// per card currency.
func renderCards(cards []api.Card) {
	rows := pterm.TableData{
		{"Card", "Network", "Number", "Balance", "Limit"},
	}
	for _, c := range cards {
		rows = append(rows, []string{
			c.Name,
			strings.ToUpper(c.Network),
			maskedNumber(c.LastFour),
			formatAmount(c.Balance, c.Currency),
			formatAmount(c.CreditLimit, c.Currency),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	pterm.Println()
}

// maskedNumber renders the only digits we ever hold, the last four.
func maskedNumber(lastFour string) string {
	if lastFour == "" {
		return "****"
	}
	return "**** " + lastFour
}

func formatAmount(v float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}
