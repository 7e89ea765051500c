// Package airdrops assembles claimable campaign listings for a wallet.
package airdrops

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"solana-airdrop-client/internal/amount"
	"solana-airdrop-client/internal/domain"
	"solana-airdrop-client/internal/observability"
)

// ErrSuperseded is returned when a newer listing started while this one was
// still fetching. The stale result must be discarded, not rendered.
var ErrSuperseded = errors.New("listing superseded by a newer request")

// API is the subset of the distribution API the aggregator needs.
type API interface {
	ListClaimable(ctx context.Context, address string, limit int, skimZeroValued bool) ([]domain.Allocation, error)
	GetAirdrops(ctx context.Context, addresses []string, chain string) ([]domain.Airdrop, error)
	GetAirdrop(ctx context.Context, id string) (*domain.Airdrop, error)
	CheckEligibility(ctx context.Context, claimantAddresses []string) ([]domain.Allocation, error)
}

// TokenSource resolves display metadata for mints.
type TokenSource interface {
	GetMany(ctx context.Context, mints []string) map[string]*domain.TokenMetadata
}

// Entry is one row of the claimable listing: the campaign joined with the
// wallet's allocation and the resolved token.
type Entry struct {
	Airdrop     domain.Airdrop
	Allocation  domain.Allocation
	Token       *domain.TokenMetadata // nil when resolution failed
	Type        domain.AirdropType
	Claimable   string // raw units, never negative
	AmountUSD   *float64
	CampaignUSD *float64
}

// Aggregator builds wallet-centric views over the distribution API.
type Aggregator struct {
	api    API
	tokens TokenSource
	chain  string
	logger *zap.Logger

	generation atomic.Uint64
}

// NewAggregator creates an aggregator. chain defaults to SOLANA when empty.
func NewAggregator(apiClient API, tokens TokenSource, chain string, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		api:    apiClient,
		tokens: tokens,
		chain:  chain,
		logger: logger,
	}
}

// List fetches the wallet's claimable allocations, joins them with their
// campaigns and resolves token metadata. If another List call starts while
// this one is in flight, the older call returns ErrSuperseded so the caller
// never renders data for a wallet the user has switched away from.
func (a *Aggregator) List(ctx context.Context, wallet string, limit int, skimZeroValued bool) ([]Entry, error) {
	gen := a.generation.Add(1)

	allocations, err := a.api.ListClaimable(ctx, wallet, limit, skimZeroValued)
	if err != nil {
		return nil, fmt.Errorf("list claimable: %w", err)
	}
	if err := a.checkCurrent(ctx, gen); err != nil {
		return nil, err
	}
	if len(allocations) == 0 {
		return nil, nil
	}

	distributors := make([]string, 0, len(allocations))
	seen := make(map[string]struct{}, len(allocations))
	for _, alloc := range allocations {
		if _, ok := seen[alloc.DistributorAddress]; ok {
			continue
		}
		seen[alloc.DistributorAddress] = struct{}{}
		distributors = append(distributors, alloc.DistributorAddress)
	}

	campaigns, err := a.api.GetAirdrops(ctx, distributors, a.chain)
	if err != nil {
		return nil, fmt.Errorf("fetch campaigns: %w", err)
	}
	if err := a.checkCurrent(ctx, gen); err != nil {
		return nil, err
	}

	byDistributor := make(map[string]domain.Airdrop, len(campaigns))
	mints := make([]string, 0, len(campaigns))
	for _, c := range campaigns {
		byDistributor[c.Address] = c
		mints = append(mints, c.Mint)
	}

	tokens := a.tokens.GetMany(ctx, mints)
	if err := a.checkCurrent(ctx, gen); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(allocations))
	for _, alloc := range allocations {
		campaign, ok := byDistributor[alloc.DistributorAddress]
		if !ok {
			a.logger.Warn("allocation without campaign record",
				zap.String("distributor", alloc.DistributorAddress))
			continue
		}

		entry := Entry{
			Airdrop:    campaign,
			Allocation: alloc,
			Token:      tokens[campaign.Mint],
			Type:       amount.Classify(campaign.UnlockPeriod, campaign.StartVestingTs, campaign.EndVestingTs),
			Claimable:  amount.Claimable(alloc.AmountUnlocked, alloc.AmountClaimed),
		}
		if entry.Token != nil {
			scaled := amount.Scale(entry.Claimable, entry.Token.Decimals)
			entry.AmountUSD = amount.ToUSD(scaled, entry.Token.PriceUSD)
		}
		entry.CampaignUSD = CampaignValueUSD(&campaign, entry.Token)
		if entry.AmountUSD == nil {
			// No quote: fall back to the campaign's server-priced value.
			entry.AmountUSD = parseUSD(campaign.TotalValue)
		}
		entries = append(entries, entry)
	}

	observability.RecordListing(false)
	return entries, nil
}

// Details fetches one campaign plus the wallet's allocation in it. wallet may
// be empty, in which case only the campaign is returned.
func (a *Aggregator) Details(ctx context.Context, distributorAddress, wallet string) (*domain.AirdropDetails, error) {
	campaign, err := a.api.GetAirdrop(ctx, distributorAddress)
	if err != nil {
		return nil, err
	}

	details := &domain.AirdropDetails{Airdrop: campaign}
	if wallet == "" {
		return details, nil
	}

	allocations, err := a.api.CheckEligibility(ctx, []string{wallet})
	if err != nil {
		// The campaign itself loaded; eligibility is additive.
		a.logger.Warn("eligibility check failed",
			zap.String("distributor", distributorAddress),
			zap.String("wallet", wallet),
			zap.Error(err))
		return details, nil
	}

	for i := range allocations {
		if allocations[i].DistributorAddress == distributorAddress {
			details.UserAllocation = &allocations[i]
			break
		}
	}
	return details, nil
}

// CampaignValueUSD prices the campaign's full claim pool with the resolved
// token, falling back to the server-provided totalValue when no quote is
// known. Returns nil when neither is available.
func CampaignValueUSD(campaign *domain.Airdrop, meta *domain.TokenMetadata) *float64 {
	if meta != nil && meta.PriceUSD != nil {
		scaled := amount.Scale(campaign.MaxTotalClaim, meta.Decimals)
		return amount.ToUSD(scaled, meta.PriceUSD)
	}
	return parseUSD(campaign.TotalValue)
}

func parseUSD(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// checkCurrent fails the in-flight listing when the context died or a newer
// listing has started.
func (a *Aggregator) checkCurrent(ctx context.Context, gen uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.generation.Load() != gen {
		observability.RecordListing(true)
		return ErrSuperseded
	}
	return nil
}
