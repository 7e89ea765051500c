package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"solana-airdrop-client/internal/airdrops"
	"solana-airdrop-client/internal/amount"
)

func runList(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.logger.Sync()

	wallet := args[0]
	skimZero, _ := cmd.Flags().GetBool("skim-zero")

	ctx := context.Background()
	entries, err := app.agg.List(ctx, wallet, app.cfg.Limit, skimZero)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No claimable airdrops.")
		return nil
	}

	printEntries(entries)
	return nil
}

func printEntries(entries []airdrops.Entry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CAMPAIGN\tTOKEN\tTYPE\tCLAIMABLE\tVALUE (USD)\tDISTRIBUTOR")

	for _, e := range entries {
		symbol := "?"
		claimable := e.Claimable
		value := "-"
		if e.Token != nil {
			symbol = e.Token.Symbol
			claimable = amount.FormatToken(e.Claimable, e.Token.Decimals)
		}
		if e.AmountUSD != nil {
			value = "$" + amount.FormatNumber(*e.AmountUSD)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Airdrop.Name,
			symbol,
			e.Type,
			claimable,
			value,
			amount.TruncateAddress(e.Airdrop.Address, 4, 4),
		)
	}
	w.Flush()
}
