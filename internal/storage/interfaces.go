package storage

import (
	"context"

	"solana-airdrop-client/internal/domain"
)

// ClaimRecordStore provides access to claim attempt history.
type ClaimRecordStore interface {
	// Insert adds a settled claim attempt.
	Insert(ctx context.Context, r *domain.ClaimRecord) error

	// GetByWallet retrieves all records for a wallet, ordered by CreatedAt DESC.
	GetByWallet(ctx context.Context, walletAddress string) ([]*domain.ClaimRecord, error)

	// GetByDistributor retrieves all records for a distributor, ordered by CreatedAt DESC.
	GetByDistributor(ctx context.Context, distributorAddress string) ([]*domain.ClaimRecord, error)

	// GetBySignature retrieves the record for a confirmed transaction.
	// Returns ErrNotFound when no record carries the signature.
	GetBySignature(ctx context.Context, txSignature string) (*domain.ClaimRecord, error)
}
