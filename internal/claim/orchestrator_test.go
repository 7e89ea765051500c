package claim

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solana-airdrop-client/internal/distributor"
	"solana-airdrop-client/internal/domain"
	"solana-airdrop-client/internal/storage/memory"
)

type stubWallet struct {
	address string
	canSign bool
}

func (w *stubWallet) Address() string { return w.address }
func (w *stubWallet) CanSign() bool   { return w.canSign }

type stubClaimantAPI struct {
	claimant *domain.ClaimantInfo
	err      error
	calls    int
}

func (s *stubClaimantAPI) GetClaimant(ctx context.Context, dist, claimant string) (*domain.ClaimantInfo, error) {
	s.calls++
	return s.claimant, s.err
}

type stubSubmitter struct {
	signature string
	err       error
	params    distributor.SubmitParams
	calls     int
}

func (s *stubSubmitter) SubmitClaim(ctx context.Context, params distributor.SubmitParams) (string, error) {
	s.calls++
	s.params = params
	return s.signature, s.err
}

type stubConfirmer struct {
	err error
}

func (s *stubConfirmer) ConfirmTransaction(ctx context.Context, signature string) error {
	return s.err
}

func proofHex(n int) []string {
	nodes := make([]string, n)
	for i := range nodes {
		nodes[i] = hex.EncodeToString([]byte(strings.Repeat(string(rune('a'+i)), 32)))
	}
	return nodes
}

func testAirdrop() *domain.Airdrop {
	return &domain.Airdrop{Address: "dist1", Mint: "mint1"}
}

func testAllocation() *domain.Allocation {
	return &domain.Allocation{
		DistributorAddress: "dist1",
		Address:            "wallet1",
		AmountUnlocked:     "1000",
		AmountClaimed:      "200",
		Mint:               "mint1",
	}
}

func TestOrchestrator_Claim(t *testing.T) {
	apiStub := &stubClaimantAPI{claimant: &domain.ClaimantInfo{
		DistributorAddress: "dist1",
		Address:            "wallet1",
		AmountUnlocked:     "1000",
		AmountLocked:       "50",
		Proof:              proofHex(2),
	}}
	submitter := &stubSubmitter{signature: "sig1"}
	records := memory.NewClaimRecordStore()

	o := NewOrchestrator(apiStub, &stubWallet{address: "wallet1", canSign: true}, submitter, &stubConfirmer{}, records, zap.NewNop())

	result, err := o.Claim(context.Background(), testAirdrop(), testAllocation())
	require.NoError(t, err)
	assert.Equal(t, "sig1", result.Signature)
	assert.Equal(t, "1000", result.AmountUnlocked)
	assert.Equal(t, StateSucceeded, o.State())

	assert.Equal(t, uint64(1000), submitter.params.AmountUnlocked)
	assert.Equal(t, uint64(50), submitter.params.AmountLocked)
	require.Len(t, submitter.params.Proof, 2)
	assert.Len(t, submitter.params.Proof[0], 32)

	history, err := records.GetByWallet(context.Background(), "wallet1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ClaimSucceeded, history[0].Status)
	assert.Equal(t, "sig1", history[0].TxSignature)
}

func TestOrchestrator_PrefersRawAmounts(t *testing.T) {
	apiStub := &stubClaimantAPI{claimant: &domain.ClaimantInfo{
		AmountUnlocked:    "1",
		AmountLocked:      "2",
		RawAmountUnlocked: "1000000000",
		RawAmountLocked:   "2000000000",
		Proof:             proofHex(1),
	}}
	submitter := &stubSubmitter{signature: "sig1"}

	o := NewOrchestrator(apiStub, &stubWallet{address: "wallet1", canSign: true}, submitter, nil, nil, zap.NewNop())

	result, err := o.Claim(context.Background(), testAirdrop(), testAllocation())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000000000), submitter.params.AmountUnlocked)
	assert.Equal(t, uint64(2000000000), submitter.params.AmountLocked)
	assert.Equal(t, "1000000000", result.AmountUnlocked)
}

func TestOrchestrator_PreconditionMessages(t *testing.T) {
	eligible := &domain.ClaimantInfo{Proof: proofHex(1), AmountUnlocked: "1000", AmountLocked: "0"}

	tests := []struct {
		name       string
		wallet     Wallet
		allocation *domain.Allocation
		claimant   *domain.ClaimantInfo
		submitter  Submitter
		want       error
		wantMsg    string
	}{
		{
			name:    "no wallet",
			wallet:  nil,
			want:    ErrWalletNotConnected,
			wantMsg: "Wallet not connected",
		},
		{
			name:    "empty address",
			wallet:  &stubWallet{},
			want:    ErrWalletNotConnected,
			wantMsg: "Wallet not connected",
		},
		{
			name:    "no allocation",
			wallet:  &stubWallet{address: "wallet1", canSign: true},
			want:    ErrNoAllocation,
			wantMsg: "No allocation found for this airdrop",
		},
		{
			name:       "wallet mismatch",
			wallet:     &stubWallet{address: "other", canSign: true},
			allocation: testAllocation(),
			want:       ErrWalletMismatch,
			wantMsg:    "Wallet address mismatch. Please use the wallet that is eligible for this airdrop.",
		},
		{
			name:       "nothing to claim",
			wallet:     &stubWallet{address: "wallet1", canSign: true},
			allocation: testAllocation(),
			claimant: &domain.ClaimantInfo{
				AmountUnlocked: "500",
				AmountClaimed:  "500",
				Proof:          proofHex(1),
			},
			want:    ErrNothingToClaim,
			wantMsg: "No claimable tokens available",
		},
		{
			name:       "missing proof",
			wallet:     &stubWallet{address: "wallet1", canSign: true},
			allocation: testAllocation(),
			claimant:   &domain.ClaimantInfo{AmountUnlocked: "1000"},
			want:       ErrMissingProof,
			wantMsg:    "Merkle proof is required for claiming. Please ensure you are eligible for this airdrop.",
		},
		{
			name:       "no submitter",
			wallet:     &stubWallet{address: "wallet1", canSign: true},
			allocation: testAllocation(),
			claimant:   eligible,
			want:       ErrNoSigner,
			wantMsg:    "Wallet adapter not available or does not support signing",
		},
		{
			name:       "wallet cannot sign",
			wallet:     &stubWallet{address: "wallet1", canSign: false},
			allocation: testAllocation(),
			claimant:   eligible,
			submitter:  &stubSubmitter{},
			want:       ErrNoSigner,
			wantMsg:    "Wallet adapter not available or does not support signing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiStub := &stubClaimantAPI{claimant: tt.claimant}
			o := NewOrchestrator(apiStub, tt.wallet, tt.submitter, nil, nil, zap.NewNop())

			_, err := o.Claim(context.Background(), testAirdrop(), tt.allocation)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, StateFailed, o.State())
		})
	}
}

func TestOrchestrator_AddressMatchIsCaseInsensitive(t *testing.T) {
	apiStub := &stubClaimantAPI{claimant: &domain.ClaimantInfo{
		AmountUnlocked: "1000",
		AmountLocked:   "0",
		Proof:          proofHex(1),
	}}
	submitter := &stubSubmitter{signature: "sig1"}

	o := NewOrchestrator(apiStub, &stubWallet{address: "WALLET1", canSign: true}, submitter, nil, nil, zap.NewNop())

	_, err := o.Claim(context.Background(), testAirdrop(), testAllocation())
	require.NoError(t, err, "case difference alone must not be a mismatch")
}

func TestOrchestrator_MismatchCheckedBeforeClaimantFetch(t *testing.T) {
	apiStub := &stubClaimantAPI{}
	o := NewOrchestrator(apiStub, &stubWallet{address: "other", canSign: true}, nil, nil, nil, zap.NewNop())

	_, err := o.Claim(context.Background(), testAirdrop(), testAllocation())
	assert.ErrorIs(t, err, ErrWalletMismatch)
	assert.Zero(t, apiStub.calls, "claimant record must not be fetched for a mismatched wallet")
}

func TestOrchestrator_ConfirmationFailure(t *testing.T) {
	apiStub := &stubClaimantAPI{claimant: &domain.ClaimantInfo{
		AmountUnlocked: "1000",
		AmountLocked:   "0",
		Proof:          proofHex(1),
	}}
	submitter := &stubSubmitter{signature: "sig1"}
	confirmer := &stubConfirmer{err: errors.New("timeout waiting for notification")}
	records := memory.NewClaimRecordStore()

	o := NewOrchestrator(apiStub, &stubWallet{address: "wallet1", canSign: true}, submitter, confirmer, records, zap.NewNop())

	_, err := o.Claim(context.Background(), testAirdrop(), testAllocation())
	assert.ErrorIs(t, err, ErrConfirmation)
	assert.Equal(t, StateFailed, o.State())

	history, err := records.GetByWallet(context.Background(), "wallet1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ClaimFailed, history[0].Status)
	assert.Contains(t, history[0].ErrorMessage, "sig1")
}

func TestOrchestrator_SubmitFailure(t *testing.T) {
	apiStub := &stubClaimantAPI{claimant: &domain.ClaimantInfo{
		AmountUnlocked: "1000",
		AmountLocked:   "0",
		Proof:          proofHex(1),
	}}
	submitter := &stubSubmitter{err: errors.New("blockhash expired")}

	o := NewOrchestrator(apiStub, &stubWallet{address: "wallet1", canSign: true}, submitter, nil, nil, zap.NewNop())

	_, err := o.Claim(context.Background(), testAirdrop(), testAllocation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blockhash expired")
	assert.Equal(t, StateFailed, o.State())
}

func TestOrchestrator_BadProofEncoding(t *testing.T) {
	apiStub := &stubClaimantAPI{claimant: &domain.ClaimantInfo{
		AmountUnlocked: "1000",
		Proof:          []string{"zzzz"},
	}}

	o := NewOrchestrator(apiStub, &stubWallet{address: "wallet1", canSign: true}, &stubSubmitter{}, nil, nil, zap.NewNop())

	_, err := o.Claim(context.Background(), testAirdrop(), testAllocation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode merkle proof")
}

func TestOrchestrator_RejectsConcurrentClaim(t *testing.T) {
	o := NewOrchestrator(&stubClaimantAPI{}, &stubWallet{address: "wallet1", canSign: true}, nil, nil, nil, zap.NewNop())
	o.setState(StateSubmitting)

	_, err := o.Claim(context.Background(), testAirdrop(), testAllocation())
	assert.ErrorIs(t, err, ErrInProgress)
}

func TestOrchestrator_RecordsFailedPrecondition(t *testing.T) {
	records := memory.NewClaimRecordStore()
	o := NewOrchestrator(&stubClaimantAPI{}, &stubWallet{address: "wallet1", canSign: true}, nil, nil, records, zap.NewNop())

	_, err := o.Claim(context.Background(), testAirdrop(), nil)
	assert.ErrorIs(t, err, ErrNoAllocation)

	history, err := records.GetByWallet(context.Background(), "wallet1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "No allocation found for this airdrop", history[0].ErrorMessage)
	assert.Empty(t, history[0].TxSignature)
}
