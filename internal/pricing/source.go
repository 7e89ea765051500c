// Package pricing resolves and caches USD token prices.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solana-airdrop-client/internal/solana"
)

// Default configuration values.
const (
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	DefaultHTTPTimeout  = 15 * time.Second
)

// Source fetches the current USD price for a mint. A nil price with a nil
// error means the source has no quote for that mint.
type Source interface {
	GetPriceUSD(ctx context.Context, mint string) (*float64, error)
}

// CoinGecko quotes Solana tokens by contract address, with the native mint
// mapped to the "solana" asset id.
type CoinGecko struct {
	baseURL string
	client  *http.Client
	apiKey  string
}

// CoinGeckoOption configures CoinGecko.
type CoinGeckoOption func(*CoinGecko)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) CoinGeckoOption {
	return func(c *CoinGecko) {
		c.client = client
	}
}

// WithAPIKey sets the demo/pro API key header.
func WithAPIKey(key string) CoinGeckoOption {
	return func(c *CoinGecko) {
		c.apiKey = key
	}
}

// NewCoinGecko creates a CoinGecko price source.
func NewCoinGecko(baseURL string, opts ...CoinGeckoOption) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	c := &CoinGecko{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Source = (*CoinGecko)(nil)

// GetPriceUSD returns the USD quote for the mint, or nil when CoinGecko does
// not track it.
func (c *CoinGecko) GetPriceUSD(ctx context.Context, mint string) (*float64, error) {
	if mint == solana.NativeMint {
		return c.fetch(ctx, "/simple/price?ids=solana&vs_currencies=usd", "solana")
	}

	path := "/simple/token_price/solana?contract_addresses=" + url.QueryEscape(mint) + "&vs_currencies=usd"
	// CoinGecko lowercases contract addresses in its response keys.
	return c.fetch(ctx, path, strings.ToLower(mint))
}

func (c *CoinGecko) fetch(ctx context.Context, path, key string) (*float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch price: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price request failed: status %d: %s", resp.StatusCode, string(body))
	}

	var out map[string]map[string]float64
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal price response: %w", err)
	}

	quote, ok := out[key]
	if !ok {
		return nil, nil
	}
	usd, ok := quote["usd"]
	if !ok {
		return nil, nil
	}
	return &usd, nil
}
