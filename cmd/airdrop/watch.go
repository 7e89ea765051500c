package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"solana-airdrop-client/internal/airdrops"
	"solana-airdrop-client/internal/observability"
)

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.logger.Sync()

	wallet := args[0]
	interval, _ := cmd.Flags().GetDuration("interval")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSrv := serveMetrics(app.cfg.MetricsAddr, observability.Handler(), app.logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsSrv.Shutdown(shutdownCtx)
	}()

	app.logger.Info("watching claimable airdrops",
		zap.String("wallet", wallet),
		zap.Duration("interval", interval),
		zap.String("metrics", app.cfg.MetricsAddr))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	poll := func() {
		entries, err := app.agg.List(ctx, wallet, app.cfg.Limit, false)
		if err != nil {
			if errors.Is(err, airdrops.ErrSuperseded) || ctx.Err() != nil {
				return
			}
			app.logger.Warn("listing failed", zap.Error(err))
			return
		}
		app.logger.Info("listing refreshed", zap.Int("claimable", len(entries)))
		printEntries(entries)
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			app.logger.Info("shutting down")
			return nil
		case <-ticker.C:
			poll()
		}
	}
}
