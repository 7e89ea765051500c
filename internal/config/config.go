// Package config loads client configuration from flags, env, and file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"solana-airdrop-client/internal/api"
	"solana-airdrop-client/internal/distributor"
	"solana-airdrop-client/internal/pricing"
	"solana-airdrop-client/internal/solana"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	APIBaseURL     string
	Chain          string
	Limit          int
	RPCEndpoint    string
	WSEndpoint     string
	ProgramID      string
	CoinGeckoURL   string
	CoinGeckoKey   string
	PriceTTL       time.Duration
	KeypairPath    string
	PostgresDSN    string
	MetricsAddr    string
	ClaimTimeout   time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AIRDROP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api-url", api.DefaultBaseURL)
	v.SetDefault("chain", api.DefaultChain)
	v.SetDefault("limit", api.DefaultLimit)
	v.SetDefault("rpc", solana.DefaultRPCEndpoint)
	v.SetDefault("ws", solana.DefaultWSEndpoint)
	v.SetDefault("program-id", distributor.DefaultProgramID)
	v.SetDefault("coingecko-url", pricing.DefaultCoinGeckoURL)
	v.SetDefault("price-ttl", pricing.DefaultTTL)
	v.SetDefault("metrics-addr", ":9102")
	v.SetDefault("claim-timeout", solana.DefaultConfirmTimeout)
	v.SetDefault("request-timeout", api.DefaultTimeout)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		APIBaseURL:     v.GetString("api-url"),
		Chain:          v.GetString("chain"),
		Limit:          v.GetInt("limit"),
		RPCEndpoint:    v.GetString("rpc"),
		WSEndpoint:     v.GetString("ws"),
		ProgramID:      v.GetString("program-id"),
		CoinGeckoURL:   v.GetString("coingecko-url"),
		CoinGeckoKey:   v.GetString("coingecko-key"),
		PriceTTL:       v.GetDuration("price-ttl"),
		KeypairPath:    v.GetString("keypair"),
		PostgresDSN:    v.GetString("postgres-dsn"),
		MetricsAddr:    v.GetString("metrics-addr"),
		ClaimTimeout:   v.GetDuration("claim-timeout"),
		RequestTimeout: v.GetDuration("request-timeout"),
		LogLevel:       v.GetString("log-level"),
	}

	return cfg, nil
}
