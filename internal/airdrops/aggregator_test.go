package airdrops

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solana-airdrop-client/internal/api"
	"solana-airdrop-client/internal/domain"
)

type stubAPI struct {
	mu           sync.Mutex
	allocations  []domain.Allocation
	campaigns    []domain.Airdrop
	campaign     *domain.Airdrop
	eligible     []domain.Allocation
	listErr      error
	campaignsErr error

	listCalls     int
	campaignsArgs []string

	// onList lets a test start a competing request mid-flight.
	onList func()
}

func (s *stubAPI) ListClaimable(ctx context.Context, address string, limit int, skim bool) ([]domain.Allocation, error) {
	s.mu.Lock()
	s.listCalls++
	hook := s.onList
	s.onList = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return s.allocations, s.listErr
}

func (s *stubAPI) GetAirdrops(ctx context.Context, addresses []string, chain string) ([]domain.Airdrop, error) {
	s.mu.Lock()
	s.campaignsArgs = addresses
	s.mu.Unlock()
	return s.campaigns, s.campaignsErr
}

func (s *stubAPI) GetAirdrop(ctx context.Context, id string) (*domain.Airdrop, error) {
	if s.campaign == nil {
		return nil, api.ErrNotFound
	}
	return s.campaign, nil
}

func (s *stubAPI) CheckEligibility(ctx context.Context, addrs []string) ([]domain.Allocation, error) {
	return s.eligible, nil
}

type stubTokens struct {
	tokens map[string]*domain.TokenMetadata
}

func (s *stubTokens) GetMany(ctx context.Context, mints []string) map[string]*domain.TokenMetadata {
	out := make(map[string]*domain.TokenMetadata)
	for _, m := range mints {
		if meta, ok := s.tokens[m]; ok {
			out[m] = meta
		}
	}
	return out
}

func price(v float64) *float64 { return &v }

func TestAggregator_List(t *testing.T) {
	apiStub := &stubAPI{
		allocations: []domain.Allocation{
			{DistributorAddress: "dist1", Address: "wallet1", AmountUnlocked: "2000000000", AmountClaimed: "500000000", Mint: "mint1"},
			{DistributorAddress: "dist2", Address: "wallet1", AmountUnlocked: "100", AmountClaimed: "100", Mint: "mint2"},
		},
		campaigns: []domain.Airdrop{
			{Address: "dist1", Mint: "mint1", Name: "Drop One", UnlockPeriod: 1, StartVestingTs: 100, EndVestingTs: 100},
			{Address: "dist2", Mint: "mint2", Name: "Drop Two", UnlockPeriod: 3600, StartVestingTs: 100, EndVestingTs: 200},
		},
	}
	tokens := &stubTokens{tokens: map[string]*domain.TokenMetadata{
		"mint1": {Mint: "mint1", Symbol: "ONE", Decimals: 9, PriceUSD: price(2.0)},
		"mint2": {Mint: "mint2", Symbol: "TWO", Decimals: 6},
	}}

	agg := NewAggregator(apiStub, tokens, "SOLANA", zap.NewNop())
	entries, err := agg.List(context.Background(), "wallet1", 0, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, []string{"dist1", "dist2"}, apiStub.campaignsArgs)

	first := entries[0]
	assert.Equal(t, "Drop One", first.Airdrop.Name)
	assert.Equal(t, domain.AirdropInstant, first.Type)
	assert.Equal(t, "1500000000", first.Claimable)
	require.NotNil(t, first.AmountUSD)
	assert.InDelta(t, 3.0, *first.AmountUSD, 1e-9)

	second := entries[1]
	assert.Equal(t, domain.AirdropVested, second.Type)
	assert.Equal(t, "0", second.Claimable)
	assert.Nil(t, second.AmountUSD, "no price means no USD value")
}

func TestAggregator_List_CampaignValueFallback(t *testing.T) {
	apiStub := &stubAPI{
		allocations: []domain.Allocation{
			{DistributorAddress: "dist1", AmountUnlocked: "100", AmountClaimed: "0", Mint: "mint1"},
		},
		campaigns: []domain.Airdrop{
			{Address: "dist1", Mint: "mint1", UnlockPeriod: 1, TotalValue: "12.5"},
		},
	}
	tokens := &stubTokens{tokens: map[string]*domain.TokenMetadata{
		"mint1": {Mint: "mint1", Decimals: 6}, // no price
	}}

	agg := NewAggregator(apiStub, tokens, "SOLANA", zap.NewNop())
	entries, err := agg.List(context.Background(), "wallet1", 0, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// With no quote, the campaign's server-priced totalValue is shown.
	require.NotNil(t, entries[0].AmountUSD)
	assert.Equal(t, 12.5, *entries[0].AmountUSD)
	require.NotNil(t, entries[0].CampaignUSD)
	assert.Equal(t, 12.5, *entries[0].CampaignUSD)
}

func TestCampaignValueUSD(t *testing.T) {
	campaign := &domain.Airdrop{MaxTotalClaim: "2000000000", TotalValue: "99.9"}

	// With a quote, the pool is priced directly.
	meta := &domain.TokenMetadata{Decimals: 9, PriceUSD: price(3.0)}
	v := CampaignValueUSD(campaign, meta)
	require.NotNil(t, v)
	assert.InDelta(t, 6.0, *v, 1e-9)

	// Without one, the server-provided value wins.
	v = CampaignValueUSD(campaign, &domain.TokenMetadata{Decimals: 9})
	require.NotNil(t, v)
	assert.Equal(t, 99.9, *v)

	v = CampaignValueUSD(campaign, nil)
	require.NotNil(t, v)
	assert.Equal(t, 99.9, *v)

	// Neither source yields a value.
	v = CampaignValueUSD(&domain.Airdrop{}, nil)
	assert.Nil(t, v)
}

func TestAggregator_List_Empty(t *testing.T) {
	apiStub := &stubAPI{}
	agg := NewAggregator(apiStub, &stubTokens{}, "SOLANA", zap.NewNop())

	entries, err := agg.List(context.Background(), "wallet1", 0, false)
	require.NoError(t, err)
	assert.Empty(t, entries)
	// No allocations means no campaign fetch.
	assert.Nil(t, apiStub.campaignsArgs)
}

func TestAggregator_List_SkipsOrphanAllocation(t *testing.T) {
	apiStub := &stubAPI{
		allocations: []domain.Allocation{
			{DistributorAddress: "dist1", AmountUnlocked: "1", AmountClaimed: "0", Mint: "mint1"},
			{DistributorAddress: "ghost", AmountUnlocked: "1", AmountClaimed: "0"},
		},
		campaigns: []domain.Airdrop{
			{Address: "dist1", Mint: "mint1", UnlockPeriod: 1},
		},
	}

	agg := NewAggregator(apiStub, &stubTokens{}, "SOLANA", zap.NewNop())
	entries, err := agg.List(context.Background(), "wallet1", 0, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dist1", entries[0].Airdrop.Address)
	assert.Nil(t, entries[0].Token)
}

func TestAggregator_List_Superseded(t *testing.T) {
	apiStub := &stubAPI{
		allocations: []domain.Allocation{
			{DistributorAddress: "dist1", AmountUnlocked: "1", AmountClaimed: "0"},
		},
		campaigns: []domain.Airdrop{{Address: "dist1"}},
	}

	agg := NewAggregator(apiStub, &stubTokens{}, "SOLANA", zap.NewNop())

	// While the first listing is fetching, a second one starts.
	apiStub.onList = func() {
		agg.generation.Add(1)
	}

	_, err := agg.List(context.Background(), "wallet1", 0, false)
	assert.ErrorIs(t, err, ErrSuperseded)
}

func TestAggregator_List_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	apiStub := &stubAPI{
		allocations: []domain.Allocation{{DistributorAddress: "dist1"}},
		onList:      cancel,
	}

	agg := NewAggregator(apiStub, &stubTokens{}, "SOLANA", zap.NewNop())
	_, err := agg.List(ctx, "wallet1", 0, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregator_Details(t *testing.T) {
	apiStub := &stubAPI{
		campaign: &domain.Airdrop{Address: "dist1", Mint: "mint1", Name: "Drop One"},
		eligible: []domain.Allocation{
			{DistributorAddress: "other", Address: "wallet1"},
			{DistributorAddress: "dist1", Address: "wallet1", AmountUnlocked: "5"},
		},
	}

	agg := NewAggregator(apiStub, &stubTokens{}, "SOLANA", zap.NewNop())
	details, err := agg.Details(context.Background(), "dist1", "wallet1")
	require.NoError(t, err)
	assert.Equal(t, "Drop One", details.Airdrop.Name)
	require.NotNil(t, details.UserAllocation)
	assert.Equal(t, "5", details.UserAllocation.AmountUnlocked)
}

func TestAggregator_Details_NoWallet(t *testing.T) {
	apiStub := &stubAPI{
		campaign: &domain.Airdrop{Address: "dist1"},
		eligible: []domain.Allocation{{DistributorAddress: "dist1"}},
	}

	agg := NewAggregator(apiStub, &stubTokens{}, "SOLANA", zap.NewNop())
	details, err := agg.Details(context.Background(), "dist1", "")
	require.NoError(t, err)
	assert.Nil(t, details.UserAllocation)
}

func TestAggregator_Details_NotFound(t *testing.T) {
	agg := NewAggregator(&stubAPI{}, &stubTokens{}, "SOLANA", zap.NewNop())
	_, err := agg.Details(context.Background(), "missing", "wallet1")
	assert.ErrorIs(t, err, api.ErrNotFound)
}
