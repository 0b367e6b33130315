// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cardline/cli/internal/api"
	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/httperrors"
)

var (
	txCardID string
	txLimit  int
)

// transactionsCmd represents the transactions command for listing recent
// transactions, optionally filtered to a single card.
var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "List recent transactions",
	Long: `The transactions command fetches your recent transactions from the
Cardline service. By default it shows the most recent entries across all
cards; use --card to filter to one card and --limit to control how many
entries come back.`,

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

		stopSpinner := startWaitSpinner("Fetching transactions")
		txs, err := a.backend.GetTransactions(ctx, api.TransactionQuery{
			CardID: txCardID,
			Limit:  txLimit,
		})
		stopSpinner()
		if err != nil {
			if cerr.Is(err, cerr.Unauthorized) {
				return a.refreshAfter401(ctx, err)
			}
			return httperrors.FormatNetworkError(err, "fetching transactions")
		}

		if len(txs) == 0 {
			pterm.Println("No transactions found.")
			return nil
		}

		rows := pterm.TableData{
			{"Date", "Merchant", "Category", "Amount"},
		}
		for _, t := range txs {
			rows = append(rows, []string{
				t.Date,
				t.Merchant,
				t.Category,
				formatAmount(t.Amount, t.Currency),
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		pterm.Println()
		return nil
	},
}

func init() {
	transactionsCmd.Flags().StringVar(&txCardID, "card", "", "Only show transactions for this card ID")
	transactionsCmd.Flags().IntVar(&txLimit, "limit", 20, "Maximum number of transactions to fetch")
	rootCmd.AddCommand(transactionsCmd)
}
