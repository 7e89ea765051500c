package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-airdrop-client/internal/domain"
	"solana-airdrop-client/internal/storage"
)

// ClaimRecordStore implements storage.ClaimRecordStore using PostgreSQL.
type ClaimRecordStore struct {
	pool *Pool
}

// NewClaimRecordStore creates a new ClaimRecordStore.
func NewClaimRecordStore(pool *Pool) *ClaimRecordStore {
	return &ClaimRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClaimRecordStore = (*ClaimRecordStore)(nil)

// Insert adds a settled claim attempt.
func (s *ClaimRecordStore) Insert(ctx context.Context, r *domain.ClaimRecord) error {
	if r == nil || r.WalletAddress == "" || r.DistributorAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO claim_records (
			wallet_address, distributor_address, mint,
			amount_unlocked, amount_locked, tx_signature,
			status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		r.WalletAddress,
		r.DistributorAddress,
		r.Mint,
		r.AmountUnlocked,
		r.AmountLocked,
		r.TxSignature,
		string(r.Status),
		r.ErrorMessage,
		r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert claim record: %w", err)
	}
	return nil
}

// GetByWallet retrieves all records for a wallet, ordered by CreatedAt DESC.
func (s *ClaimRecordStore) GetByWallet(ctx context.Context, walletAddress string) ([]*domain.ClaimRecord, error) {
	query := `
		SELECT wallet_address, distributor_address, mint,
		       amount_unlocked, amount_locked, tx_signature,
		       status, error_message, created_at
		FROM claim_records
		WHERE wallet_address = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("get claim records by wallet: %w", err)
	}
	defer rows.Close()

	return scanClaimRecords(rows)
}

// GetByDistributor retrieves all records for a distributor, ordered by CreatedAt DESC.
func (s *ClaimRecordStore) GetByDistributor(ctx context.Context, distributorAddress string) ([]*domain.ClaimRecord, error) {
	query := `
		SELECT wallet_address, distributor_address, mint,
		       amount_unlocked, amount_locked, tx_signature,
		       status, error_message, created_at
		FROM claim_records
		WHERE distributor_address = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, distributorAddress)
	if err != nil {
		return nil, fmt.Errorf("get claim records by distributor: %w", err)
	}
	defer rows.Close()

	return scanClaimRecords(rows)
}

// GetBySignature retrieves the record for a confirmed transaction.
func (s *ClaimRecordStore) GetBySignature(ctx context.Context, txSignature string) (*domain.ClaimRecord, error) {
	if txSignature == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT wallet_address, distributor_address, mint,
		       amount_unlocked, amount_locked, tx_signature,
		       status, error_message, created_at
		FROM claim_records
		WHERE tx_signature = $1
	`

	var r domain.ClaimRecord
	var status string
	err := s.pool.QueryRow(ctx, query, txSignature).Scan(
		&r.WalletAddress,
		&r.DistributorAddress,
		&r.Mint,
		&r.AmountUnlocked,
		&r.AmountLocked,
		&r.TxSignature,
		&status,
		&r.ErrorMessage,
		&r.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get claim record by signature: %w", err)
	}
	r.Status = domain.ClaimStatus(status)
	return &r, nil
}

func scanClaimRecords(rows pgx.Rows) ([]*domain.ClaimRecord, error) {
	var out []*domain.ClaimRecord
	for rows.Next() {
		var r domain.ClaimRecord
		var status string
		if err := rows.Scan(
			&r.WalletAddress,
			&r.DistributorAddress,
			&r.Mint,
			&r.AmountUnlocked,
			&r.AmountLocked,
			&r.TxSignature,
			&status,
			&r.ErrorMessage,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan claim record: %w", err)
		}
		r.Status = domain.ClaimStatus(status)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim records: %w", err)
	}
	return out, nil
}
