package token

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solana-airdrop-client/internal/solana"
)

type stubChain struct {
	decimals    int
	decimalsErr error
	meta        *solana.TokenMetadataAccount
	metaErr     error

	resolveCalls atomic.Int64

	// onDecimals, when set, runs inside each GetTokenDecimals call.
	onDecimals func()
}

func (s *stubChain) GetTokenDecimals(ctx context.Context, mint string) (int, error) {
	s.resolveCalls.Add(1)
	if s.onDecimals != nil {
		s.onDecimals()
	}
	return s.decimals, s.decimalsErr
}

func (s *stubChain) GetTokenMetadataAccount(ctx context.Context, mint string) (*solana.TokenMetadataAccount, error) {
	return s.meta, s.metaErr
}

type stubFetcher struct {
	doc json.RawMessage
	err error
}

func (s *stubFetcher) GetJSON(ctx context.Context, uri string, out interface{}) error {
	if s.err != nil {
		return s.err
	}
	return json.Unmarshal(s.doc, out)
}

type stubPrices struct {
	price *float64
	err   error
}

func (s *stubPrices) GetPriceUSD(ctx context.Context, mint string) (*float64, error) {
	return s.price, s.err
}

const testMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func TestResolver_FullChain(t *testing.T) {
	price := 1.0
	chain := &stubChain{
		decimals: 6,
		meta: &solana.TokenMetadataAccount{
			Name:   "USD Coin\x00\x00\x00",
			Symbol: "USDC\x00",
			URI:    "https://example.com/usdc.json\x00\x00",
		},
	}
	fetcher := &stubFetcher{doc: json.RawMessage(`{"name":"USD Coin Doc","symbol":"USDCDOC","image":"https://example.com/usdc.png"}`)}
	prices := &stubPrices{price: &price}

	resolver := NewResolver(chain, fetcher, prices, zap.NewNop())
	meta, err := resolver.Resolve(context.Background(), testMint)
	require.NoError(t, err)

	assert.Equal(t, testMint, meta.Mint)
	assert.Equal(t, 6, meta.Decimals)
	// On-chain wins over the document, NUL padding stripped.
	assert.Equal(t, "USD Coin", meta.Name)
	assert.Equal(t, "USDC", meta.Symbol)
	assert.Equal(t, "https://example.com/usdc.json", meta.URI)
	assert.Equal(t, "https://example.com/usdc.png", meta.Image)
	require.NotNil(t, meta.PriceUSD)
	assert.Equal(t, 1.0, *meta.PriceUSD)
}

func TestResolver_DecimalsFailureAborts(t *testing.T) {
	chain := &stubChain{decimalsErr: solana.ErrMintNotFound}

	resolver := NewResolver(chain, nil, nil, zap.NewNop())
	_, err := resolver.Resolve(context.Background(), testMint)
	assert.ErrorIs(t, err, solana.ErrMintNotFound)
}

func TestResolver_OffchainFallback(t *testing.T) {
	chain := &stubChain{
		decimals: 9,
		meta: &solana.TokenMetadataAccount{
			Name:   "\x00\x00\x00",
			Symbol: "\x00",
			URI:    "https://example.com/t.json",
		},
	}
	fetcher := &stubFetcher{doc: json.RawMessage(`{"name":"Doc Name","symbol":"DOC"}`)}

	resolver := NewResolver(chain, fetcher, nil, zap.NewNop())
	meta, err := resolver.Resolve(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, "Doc Name", meta.Name)
	assert.Equal(t, "DOC", meta.Symbol)
}

func TestResolver_SyntheticSymbol(t *testing.T) {
	tests := []struct {
		name string
		mint string
		want string
	}{
		{"native mint", solana.NativeMint, "SOL"},
		{"other mint uses first four", testMint, "EPJF"},
		{"short mint", "ab", "AB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &stubChain{decimals: 9, metaErr: solana.ErrMetadataNotFound}

			resolver := NewResolver(chain, nil, nil, zap.NewNop())
			meta, err := resolver.Resolve(context.Background(), tt.mint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, meta.Symbol)
			// Name falls back to the symbol when nothing else is known.
			assert.Equal(t, tt.want, meta.Name)
		})
	}
}

func TestResolver_FetchFailureKeepsOnchain(t *testing.T) {
	chain := &stubChain{
		decimals: 9,
		meta: &solana.TokenMetadataAccount{
			Name:   "My Token",
			Symbol: "MYT",
			URI:    "https://example.com/broken.json",
		},
	}
	fetcher := &stubFetcher{err: errors.New("dns failure")}

	resolver := NewResolver(chain, fetcher, nil, zap.NewNop())
	meta, err := resolver.Resolve(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, "My Token", meta.Name)
	assert.Equal(t, "MYT", meta.Symbol)
	assert.Empty(t, meta.Image)
}

func TestResolver_PriceFailureIsNonFatal(t *testing.T) {
	chain := &stubChain{decimals: 9, metaErr: solana.ErrMetadataNotFound}
	prices := &stubPrices{err: errors.New("quota exceeded")}

	resolver := NewResolver(chain, nil, prices, zap.NewNop())
	meta, err := resolver.Resolve(context.Background(), testMint)
	require.NoError(t, err)
	assert.Nil(t, meta.PriceUSD)
}

func TestCache_SingleResolutionUnderConcurrency(t *testing.T) {
	chain := &stubChain{decimals: 9, metaErr: solana.ErrMetadataNotFound}
	cache := NewCache(NewResolver(chain, nil, nil, zap.NewNop()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			meta, err := cache.Get(context.Background(), testMint)
			assert.NoError(t, err)
			assert.Equal(t, 9, meta.Decimals)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), chain.resolveCalls.Load())
}

func TestCache_FailureNotCached(t *testing.T) {
	chain := &stubChain{decimalsErr: errors.New("rpc down")}
	cache := NewCache(NewResolver(chain, nil, nil, zap.NewNop()))

	_, err := cache.Get(context.Background(), testMint)
	require.Error(t, err)

	chain.decimalsErr = nil
	chain.decimals = 6

	meta, err := cache.Get(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, 6, meta.Decimals)

	// Third call is served from the cache.
	_, err = cache.Get(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, int64(2), chain.resolveCalls.Load())
}

func TestCache_GetMany(t *testing.T) {
	chain := &stubChain{decimals: 9, metaErr: solana.ErrMetadataNotFound}
	cache := NewCache(NewResolver(chain, nil, nil, zap.NewNop()))

	out := cache.GetMany(context.Background(), []string{testMint, testMint, solana.NativeMint})
	assert.Len(t, out, 2)
	assert.Equal(t, int64(2), chain.resolveCalls.Load())
}

func TestCache_GetManyResolvesConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int64
	chain := &stubChain{decimals: 9, metaErr: solana.ErrMetadataNotFound}
	chain.onDecimals = func() {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
	}
	cache := NewCache(NewResolver(chain, nil, nil, zap.NewNop()))

	out := cache.GetMany(context.Background(), []string{"mint1", "mint2", "mint3", "mint4"})
	assert.Len(t, out, 4)
	assert.Greater(t, peak.Load(), int64(1), "distinct mints must resolve in parallel")
}
