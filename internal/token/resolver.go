package token

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"solana-airdrop-client/internal/amount"
	"solana-airdrop-client/internal/domain"
	"solana-airdrop-client/internal/observability"
	"solana-airdrop-client/internal/pricing"
	"solana-airdrop-client/internal/solana"
)

// offchainDocument is the subset of the off-chain metadata JSON we use.
type offchainDocument struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Image  string `json:"image"`
}

// Resolver assembles a display-ready token record from on-chain state,
// the off-chain document and the price source. Only decimals are required;
// everything else degrades through fallbacks.
type Resolver struct {
	chain   solana.ChainReader
	fetcher DocumentFetcher
	prices  pricing.Source
	logger  *zap.Logger
}

// NewResolver creates a metadata resolver. fetcher and prices may be nil,
// in which case the corresponding steps are skipped.
func NewResolver(chain solana.ChainReader, fetcher DocumentFetcher, prices pricing.Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		chain:   chain,
		fetcher: fetcher,
		prices:  prices,
		logger:  logger,
	}
}

// Resolve builds the metadata record for a mint. Failure to read decimals
// aborts the resolution; every later step logs and falls through.
func (r *Resolver) Resolve(ctx context.Context, mint string) (*domain.TokenMetadata, error) {
	decimals, err := r.chain.GetTokenDecimals(ctx, mint)
	if err != nil {
		observability.RecordTokenResolution("error")
		return nil, fmt.Errorf("resolve %s: %w", mint, err)
	}
	observability.RecordTokenResolution("ok")

	meta := &domain.TokenMetadata{
		Mint:     mint,
		Decimals: decimals,
	}

	var onchain *solana.TokenMetadataAccount
	onchain, err = r.chain.GetTokenMetadataAccount(ctx, mint)
	if err != nil {
		r.logger.Warn("on-chain metadata unavailable",
			zap.String("mint", mint),
			zap.Error(err))
		onchain = nil
	}

	var doc *offchainDocument
	if onchain != nil {
		meta.URI = amount.CleanString(onchain.URI)
		if r.fetcher != nil && meta.URI != "" {
			var d offchainDocument
			if err := r.fetcher.GetJSON(ctx, meta.URI, &d); err != nil {
				r.logger.Warn("off-chain metadata unavailable",
					zap.String("mint", mint),
					zap.String("uri", meta.URI),
					zap.Error(err))
			} else {
				doc = &d
			}
		}
	}

	meta.Symbol = r.pickSymbol(mint, onchain, doc)
	meta.Name = pickName(onchain, doc, meta.Symbol)
	if doc != nil {
		meta.Image = doc.Image
	}

	if r.prices != nil {
		price, err := r.prices.GetPriceUSD(ctx, mint)
		if err != nil {
			r.logger.Warn("price unavailable",
				zap.String("mint", mint),
				zap.Error(err))
		} else {
			meta.PriceUSD = price
		}
	}

	return meta, nil
}

// pickSymbol falls through on-chain, off-chain and finally a synthetic
// symbol derived from the mint address.
func (r *Resolver) pickSymbol(mint string, onchain *solana.TokenMetadataAccount, doc *offchainDocument) string {
	if onchain != nil {
		if s := amount.CleanString(onchain.Symbol); s != "" {
			return s
		}
	}
	if doc != nil && doc.Symbol != "" {
		return doc.Symbol
	}
	if mint == solana.NativeMint {
		return "SOL"
	}
	if len(mint) >= 4 {
		return strings.ToUpper(mint[:4])
	}
	return strings.ToUpper(mint)
}

func pickName(onchain *solana.TokenMetadataAccount, doc *offchainDocument, symbol string) string {
	if onchain != nil {
		if n := amount.CleanString(onchain.Name); n != "" {
			return n
		}
	}
	if doc != nil && doc.Name != "" {
		return doc.Name
	}
	return symbol
}
