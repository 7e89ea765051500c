package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"solana-airdrop-client/internal/amount"
	"solana-airdrop-client/internal/claim"
	"solana-airdrop-client/internal/distributor"
	"solana-airdrop-client/internal/solana"
	"solana-airdrop-client/internal/storage"
	"solana-airdrop-client/internal/storage/memory"
	"solana-airdrop-client/internal/storage/postgres"
)

func runClaim(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.logger.Sync()

	if app.cfg.KeypairPath == "" {
		return fmt.Errorf("keypair path is required (--keypair or AIRDROP_KEYPAIR)")
	}

	wallet, err := distributor.NewKeypairWalletFromFile(app.cfg.KeypairPath)
	if err != nil {
		return err
	}

	submitter, err := distributor.NewClient(app.cfg.RPCEndpoint, wallet, app.cfg.ProgramID, app.logger)
	if err != nil {
		return err
	}
	confirmer := solana.NewWSConfirmer(app.cfg.WSEndpoint,
		solana.WithConfirmTimeout(app.cfg.ClaimTimeout))

	ctx := context.Background()

	records, closeRecords, err := openRecords(ctx, app.cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer closeRecords()

	distributorAddress := args[0]
	details, err := app.agg.Details(ctx, distributorAddress, wallet.Address())
	if err != nil {
		return err
	}

	orchestrator := claim.NewOrchestrator(app.api, wallet, submitter, confirmer, records, app.logger)

	result, err := orchestrator.Claim(ctx, details.Airdrop, details.UserAllocation)
	if err != nil {
		return err
	}

	app.logger.Info("claim settled",
		zap.String("distributor", distributorAddress),
		zap.String("signature", result.Signature))

	if meta, metaErr := app.tokens.Get(ctx, details.Airdrop.Mint); metaErr == nil {
		fmt.Printf("Claimed %s %s\n", amount.FormatToken(result.AmountUnlocked, meta.Decimals), meta.Symbol)
	} else {
		fmt.Printf("Claimed %s (raw)\n", result.AmountUnlocked)
	}
	fmt.Printf("Signature: %s\n", result.Signature)
	return nil
}

// openRecords returns the claim history store: Postgres when a DSN is
// configured, an in-memory store otherwise.
func openRecords(ctx context.Context, dsn string) (storage.ClaimRecordStore, func(), error) {
	if dsn == "" {
		return memory.NewClaimRecordStore(), func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewClaimRecordStore(pool), pool.Close, nil
}
