package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"solana-airdrop-client/internal/airdrops"
	"solana-airdrop-client/internal/amount"
)

func runDetails(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.logger.Sync()

	distributorAddress := args[0]
	wallet, _ := cmd.Flags().GetString("wallet")

	ctx := context.Background()
	details, err := app.agg.Details(ctx, distributorAddress, wallet)
	if err != nil {
		return err
	}

	campaign := details.Airdrop
	meta, metaErr := app.tokens.Get(ctx, campaign.Mint)

	fmt.Printf("Name:         %s\n", campaign.Name)
	fmt.Printf("Distributor:  %s\n", campaign.Address)
	fmt.Printf("Mint:         %s\n", campaign.Mint)
	fmt.Printf("Type:         %s\n", amount.Classify(campaign.UnlockPeriod, campaign.StartVestingTs, campaign.EndVestingTs))
	fmt.Printf("Recipients:   %s / %s claimed\n", campaign.NumNodesClaimed, campaign.MaxNumNodes)

	if metaErr == nil {
		fmt.Printf("Token:        %s (%s)\n", meta.Name, meta.Symbol)
		fmt.Printf("Total pool:   %s %s\n", amount.FormatToken(campaign.MaxTotalClaim, meta.Decimals), meta.Symbol)
	} else {
		meta = nil
		fmt.Printf("Total pool:   %s (raw)\n", campaign.MaxTotalClaim)
	}
	if value := airdrops.CampaignValueUSD(campaign, meta); value != nil {
		fmt.Printf("Total value:  $%s\n", amount.FormatNumber(*value))
	}

	if wallet == "" {
		return nil
	}

	alloc := details.UserAllocation
	if alloc == nil {
		fmt.Printf("\nWallet %s is not eligible for this airdrop.\n", amount.TruncateAddress(wallet, 4, 4))
		return nil
	}

	claimable := amount.Claimable(alloc.AmountUnlocked, alloc.AmountClaimed)
	fmt.Printf("\nAllocation for %s:\n", amount.TruncateAddress(wallet, 4, 4))
	if metaErr == nil {
		fmt.Printf("  Unlocked:   %s %s\n", amount.FormatToken(alloc.AmountUnlocked, meta.Decimals), meta.Symbol)
		fmt.Printf("  Claimed:    %s %s\n", amount.FormatToken(alloc.AmountClaimed, meta.Decimals), meta.Symbol)
		fmt.Printf("  Claimable:  %s %s\n", amount.FormatToken(claimable, meta.Decimals), meta.Symbol)
	} else {
		fmt.Printf("  Unlocked:   %s (raw)\n", alloc.AmountUnlocked)
		fmt.Printf("  Claimed:    %s (raw)\n", alloc.AmountClaimed)
		fmt.Printf("  Claimable:  %s (raw)\n", claimable)
	}
	return nil
}
