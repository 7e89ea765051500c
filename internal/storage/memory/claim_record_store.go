package memory

import (
	"context"
	"sort"
	"sync"

	"solana-airdrop-client/internal/domain"
	"solana-airdrop-client/internal/storage"
)

// ClaimRecordStore is an in-memory implementation of storage.ClaimRecordStore.
type ClaimRecordStore struct {
	mu      sync.RWMutex
	records []*domain.ClaimRecord
}

// NewClaimRecordStore creates a new in-memory claim record store.
func NewClaimRecordStore() *ClaimRecordStore {
	return &ClaimRecordStore{}
}

// Insert adds a settled claim attempt.
func (s *ClaimRecordStore) Insert(_ context.Context, r *domain.ClaimRecord) error {
	if r == nil || r.WalletAddress == "" || r.DistributorAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recCopy := *r
	s.records = append(s.records, &recCopy)
	return nil
}

// GetByWallet retrieves all records for a wallet, ordered by CreatedAt DESC.
func (s *ClaimRecordStore) GetByWallet(_ context.Context, walletAddress string) ([]*domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ClaimRecord
	for _, r := range s.records {
		if r.WalletAddress == walletAddress {
			recCopy := *r
			out = append(out, &recCopy)
		}
	}
	sortByCreatedAtDesc(out)
	return out, nil
}

// GetByDistributor retrieves all records for a distributor, ordered by CreatedAt DESC.
func (s *ClaimRecordStore) GetByDistributor(_ context.Context, distributorAddress string) ([]*domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ClaimRecord
	for _, r := range s.records {
		if r.DistributorAddress == distributorAddress {
			recCopy := *r
			out = append(out, &recCopy)
		}
	}
	sortByCreatedAtDesc(out)
	return out, nil
}

// GetBySignature retrieves the record for a confirmed transaction.
func (s *ClaimRecordStore) GetBySignature(_ context.Context, txSignature string) (*domain.ClaimRecord, error) {
	if txSignature == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.TxSignature == txSignature {
			recCopy := *r
			return &recCopy, nil
		}
	}
	return nil, storage.ErrNotFound
}

func sortByCreatedAtDesc(records []*domain.ClaimRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
}

var _ storage.ClaimRecordStore = (*ClaimRecordStore)(nil)
