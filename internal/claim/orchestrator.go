// Package claim drives a single airdrop claim from precondition checks
// through on-chain confirmation.
package claim

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"solana-airdrop-client/internal/amount"
	"solana-airdrop-client/internal/distributor"
	"solana-airdrop-client/internal/domain"
	"solana-airdrop-client/internal/observability"
	"solana-airdrop-client/internal/solana"
	"solana-airdrop-client/internal/storage"
)

// Precondition failures, in the order they are checked. The messages are
// user-facing and must stay stable.
var (
	ErrWalletNotConnected = errors.New("Wallet not connected")
	ErrNoAllocation       = errors.New("No allocation found for this airdrop")
	ErrWalletMismatch     = errors.New("Wallet address mismatch. Please use the wallet that is eligible for this airdrop.")
	ErrNothingToClaim     = errors.New("No claimable tokens available")
	ErrMissingProof       = errors.New("Merkle proof is required for claiming. Please ensure you are eligible for this airdrop.")
	ErrNoSigner           = errors.New("Wallet adapter not available or does not support signing")

	// ErrInProgress rejects a second claim while one is still submitting.
	ErrInProgress = errors.New("a claim is already in progress")

	// ErrConfirmation marks claims that were sent but never confirmed; the
	// transaction may still land.
	ErrConfirmation = errors.New("claim transaction was not confirmed")
)

// State is the orchestrator's lifecycle phase.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Wallet is the connected wallet, or nil when none is.
type Wallet interface {
	Address() string
	CanSign() bool
}

// ClaimantAPI fetches the proof-bearing claimant record.
type ClaimantAPI interface {
	GetClaimant(ctx context.Context, distributorAddress, claimantAddress string) (*domain.ClaimantInfo, error)
}

// Submitter sends the claim transaction.
type Submitter interface {
	SubmitClaim(ctx context.Context, params distributor.SubmitParams) (string, error)
}

// Result is a settled claim.
type Result struct {
	Signature      string
	AmountUnlocked string
	AmountLocked   string
}

// Orchestrator validates, submits and confirms claims one at a time.
// records and confirmer are optional.
type Orchestrator struct {
	api       ClaimantAPI
	wallet    Wallet
	submitter Submitter
	confirmer solana.Confirmer
	records   storage.ClaimRecordStore
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.Mutex
	state State
}

// NewOrchestrator creates a claim orchestrator.
func NewOrchestrator(api ClaimantAPI, wallet Wallet, submitter Submitter, confirmer solana.Confirmer, records storage.ClaimRecordStore, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		api:       api,
		wallet:    wallet,
		submitter: submitter,
		confirmer: confirmer,
		records:   records,
		logger:    logger,
		now:       time.Now,
		state:     StateIdle,
	}
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Claim runs one claim attempt for the wallet's allocation in the campaign.
// Precondition failures return the user-facing sentinel errors above; every
// settled attempt is recorded for the history view.
func (o *Orchestrator) Claim(ctx context.Context, airdrop *domain.Airdrop, allocation *domain.Allocation) (*Result, error) {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return nil, ErrInProgress
	}
	o.state = StateSubmitting
	o.mu.Unlock()

	result, err := o.claim(ctx, airdrop, allocation)
	if err != nil {
		o.setState(StateFailed)
		observability.RecordClaimAttempt(string(domain.ClaimFailed))
		o.record(airdrop, allocation, "", domain.ClaimFailed, err.Error())
		return nil, err
	}

	o.setState(StateSucceeded)
	observability.RecordClaimAttempt(string(domain.ClaimSucceeded))
	o.record(airdrop, allocation, result.Signature, domain.ClaimSucceeded, "")
	return result, nil
}

func (o *Orchestrator) claim(ctx context.Context, airdrop *domain.Airdrop, allocation *domain.Allocation) (*Result, error) {
	if o.wallet == nil || o.wallet.Address() == "" {
		return nil, ErrWalletNotConnected
	}
	if allocation == nil {
		return nil, ErrNoAllocation
	}
	// Cached allocations can lag a wallet switch; the address check is
	// case-insensitive and happens before any claimant fetch.
	if !strings.EqualFold(allocation.Address, o.wallet.Address()) {
		return nil, ErrWalletMismatch
	}

	// The claimant record supersedes cached allocation amounts: claimable is
	// recomputed from what the distributor actually has on file.
	claimant, err := o.api.GetClaimant(ctx, airdrop.Address, o.wallet.Address())
	if err != nil {
		return nil, fmt.Errorf("fetch claimant record: %w", err)
	}
	if claimant == nil {
		return nil, ErrMissingProof
	}

	unlockedStr := firstNonEmpty(claimant.RawAmountUnlocked, claimant.AmountUnlocked, allocation.AmountUnlocked)
	lockedStr := firstNonEmpty(claimant.RawAmountLocked, claimant.AmountLocked, allocation.AmountLocked)
	claimedStr := firstNonEmpty(claimant.RawAmountClaimed, claimant.AmountClaimed, allocation.AmountClaimed)

	if amount.Claimable(unlockedStr, claimedStr) == "0" {
		return nil, ErrNothingToClaim
	}

	if len(claimant.Proof) == 0 {
		return nil, ErrMissingProof
	}
	proof, err := decodeProof(claimant.Proof)
	if err != nil {
		return nil, fmt.Errorf("decode merkle proof: %w", err)
	}

	if o.submitter == nil || !o.wallet.CanSign() {
		return nil, ErrNoSigner
	}

	unlocked, err := strconv.ParseUint(unlockedStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse unlocked amount %q: %w", unlockedStr, err)
	}
	locked, err := strconv.ParseUint(lockedStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse locked amount %q: %w", lockedStr, err)
	}

	signature, err := o.submitter.SubmitClaim(ctx, distributor.SubmitParams{
		DistributorAddress: airdrop.Address,
		Mint:               airdrop.Mint,
		AmountUnlocked:     unlocked,
		AmountLocked:       locked,
		Proof:              proof,
	})
	if err != nil {
		return nil, fmt.Errorf("submit claim: %w", err)
	}

	if o.confirmer != nil {
		if err := o.confirmer.ConfirmTransaction(ctx, signature); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfirmation, signature, err)
		}
	}

	o.logger.Info("claim confirmed",
		zap.String("distributor", airdrop.Address),
		zap.String("signature", signature))

	return &Result{
		Signature:      signature,
		AmountUnlocked: unlockedStr,
		AmountLocked:   lockedStr,
	}, nil
}

// record persists the attempt; history is best-effort and never fails the
// claim itself.
func (o *Orchestrator) record(airdrop *domain.Airdrop, allocation *domain.Allocation, signature string, status domain.ClaimStatus, errMsg string) {
	if o.records == nil {
		return
	}

	rec := &domain.ClaimRecord{
		TxSignature:  signature,
		Status:       status,
		ErrorMessage: errMsg,
		CreatedAt:    o.now().UnixMilli(),
	}
	if o.wallet != nil {
		rec.WalletAddress = o.wallet.Address()
	}
	if airdrop != nil {
		rec.DistributorAddress = airdrop.Address
		rec.Mint = airdrop.Mint
	}
	if allocation != nil {
		rec.AmountUnlocked = allocation.AmountUnlocked
		rec.AmountLocked = allocation.AmountLocked
	}

	if err := o.records.Insert(context.Background(), rec); err != nil {
		o.logger.Warn("failed to record claim attempt", zap.Error(err))
	}
}

func decodeProof(nodes []string) ([][]byte, error) {
	proof := make([][]byte, 0, len(nodes))
	for i, node := range nodes {
		raw, err := hex.DecodeString(node)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("node %d: expected 32 bytes, got %d", i, len(raw))
		}
		proof = append(proof, raw)
	}
	return proof, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
