package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"solana-airdrop-client/internal/airdrops"
	"solana-airdrop-client/internal/api"
	"solana-airdrop-client/internal/config"
	"solana-airdrop-client/internal/pricing"
	"solana-airdrop-client/internal/solana"
	"solana-airdrop-client/internal/token"
)

func main() {
	root := &cobra.Command{
		Use:          "airdrop",
		Short:        "Solana airdrop claim client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	listCmd := &cobra.Command{
		Use:   "list <wallet>",
		Short: "List claimable airdrops for a wallet",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}
	listCmd.Flags().String("api-url", "", "distribution API base URL")
	listCmd.Flags().String("chain", "", "chain identifier")
	listCmd.Flags().Int("limit", 0, "maximum allocations to fetch")
	listCmd.Flags().Bool("skim-zero", false, "ask the server to drop zero-valued allocations")
	listCmd.Flags().String("rpc", "", "Solana RPC endpoint")
	listCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(listCmd)

	detailsCmd := &cobra.Command{
		Use:   "details <distributor>",
		Short: "Show one airdrop campaign",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetails,
	}
	detailsCmd.Flags().String("wallet", "", "wallet address to check eligibility for")
	detailsCmd.Flags().String("api-url", "", "distribution API base URL")
	detailsCmd.Flags().String("rpc", "", "Solana RPC endpoint")
	detailsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(detailsCmd)

	claimCmd := &cobra.Command{
		Use:   "claim <distributor>",
		Short: "Claim an airdrop allocation",
		Args:  cobra.ExactArgs(1),
		RunE:  runClaim,
	}
	claimCmd.Flags().String("keypair", "", "path to base58 keypair file")
	claimCmd.Flags().String("api-url", "", "distribution API base URL")
	claimCmd.Flags().String("rpc", "", "Solana RPC endpoint")
	claimCmd.Flags().String("ws", "", "Solana websocket endpoint")
	claimCmd.Flags().String("program-id", "", "merkle distributor program")
	claimCmd.Flags().String("postgres-dsn", "", "Postgres DSN for claim history")
	claimCmd.Flags().Duration("claim-timeout", solana.DefaultConfirmTimeout, "confirmation wait bound")
	claimCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(claimCmd)

	historyCmd := &cobra.Command{
		Use:   "history <wallet>",
		Short: "Show past claim attempts",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}
	historyCmd.Flags().String("postgres-dsn", "", "Postgres DSN for claim history")
	historyCmd.Flags().String("signature", "", "look up one attempt by transaction signature")
	historyCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(historyCmd)

	watchCmd := &cobra.Command{
		Use:   "watch <wallet>",
		Short: "Poll claimable airdrops and expose metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	watchCmd.Flags().Duration("interval", 30*time.Second, "poll interval")
	watchCmd.Flags().String("metrics-addr", "", "metrics listen address")
	watchCmd.Flags().String("api-url", "", "distribution API base URL")
	watchCmd.Flags().String("rpc", "", "Solana RPC endpoint")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the shared client stack behind each subcommand.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	api    *api.Client
	tokens *token.Cache
	agg    *airdrops.Aggregator
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewClient(cfg.APIBaseURL,
		api.WithChain(cfg.Chain),
		api.WithDefaultLimit(cfg.Limit),
		api.WithTimeout(cfg.RequestTimeout),
	)

	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)

	var gecko []pricing.CoinGeckoOption
	if cfg.CoinGeckoKey != "" {
		gecko = append(gecko, pricing.WithAPIKey(cfg.CoinGeckoKey))
	}
	prices := pricing.NewCache(
		pricing.NewCoinGecko(cfg.CoinGeckoURL, gecko...),
		logger,
		pricing.WithTTL(cfg.PriceTTL),
	)

	resolver := token.NewResolver(rpc, token.NewHTTPFetcher(nil), prices, logger)
	tokens := token.NewCache(resolver)

	return &app{
		cfg:    cfg,
		logger: logger,
		api:    apiClient,
		tokens: tokens,
		agg:    airdrops.NewAggregator(apiClient, tokens, cfg.Chain, logger),
	}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func serveMetrics(addr string, handler http.Handler, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
