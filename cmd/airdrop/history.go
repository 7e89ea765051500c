package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"solana-airdrop-client/internal/amount"
	"solana-airdrop-client/internal/config"
	"solana-airdrop-client/internal/storage"
)

func runHistory(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	if cfg.PostgresDSN == "" {
		return fmt.Errorf("claim history requires a Postgres DSN (--postgres-dsn or AIRDROP_POSTGRES_DSN)")
	}

	ctx := context.Background()
	records, closeRecords, err := openRecords(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer closeRecords()

	if sig, _ := cmd.Flags().GetString("signature"); sig != "" {
		rec, err := records.GetBySignature(ctx, sig)
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Printf("No claim attempt recorded for signature %s.\n", sig)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Wallet:       %s\n", rec.WalletAddress)
		fmt.Printf("Distributor:  %s\n", rec.DistributorAddress)
		fmt.Printf("Status:       %s\n", rec.Status)
		fmt.Printf("When:         %s\n", time.UnixMilli(rec.CreatedAt).UTC().Format(time.RFC3339))
		if rec.ErrorMessage != "" {
			fmt.Printf("Error:        %s\n", rec.ErrorMessage)
		}
		return nil
	}

	wallet := args[0]
	history, err := records.GetByWallet(ctx, wallet)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("No claim attempts recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tDISTRIBUTOR\tSTATUS\tSIGNATURE\tERROR")
	for _, rec := range history {
		ts := time.UnixMilli(rec.CreatedAt).UTC().Format(time.RFC3339)
		sig := rec.TxSignature
		if sig == "" {
			sig = "-"
		} else {
			sig = amount.TruncateAddress(sig, 8, 8)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ts,
			amount.TruncateAddress(rec.DistributorAddress, 4, 4),
			rec.Status,
			sig,
			rec.ErrorMessage,
		)
	}
	return w.Flush()
}
