package distributor

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"
)

// DefaultProgramID is the mainnet merkle distributor program.
const DefaultProgramID = "MErKY6nZVoVAkryxAejJz2juifQ4ArgLgHmaJCQkU7N"

const claimStatusSeed = "ClaimStatus"

// SubmitParams carries everything needed to build a claim instruction.
// Amounts are raw ledger units; Proof entries are 32-byte merkle nodes.
type SubmitParams struct {
	DistributorAddress string
	Mint               string
	AmountUnlocked     uint64
	AmountLocked       uint64
	Proof              [][]byte
}

// Client builds, signs and sends claim transactions.
type Client struct {
	rpc       *client.Client
	wallet    *KeypairWallet
	programID common.PublicKey
	logger    *zap.Logger
}

// NewClient creates a distributor client. programID defaults to the mainnet
// deployment when empty.
func NewClient(endpoint string, wallet *KeypairWallet, programID string, logger *zap.Logger) (*Client, error) {
	if programID == "" {
		programID = DefaultProgramID
	}
	pid := common.PublicKeyFromString(programID)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		rpc:       client.NewClient(endpoint),
		wallet:    wallet,
		programID: pid,
		logger:    logger,
	}, nil
}

// SubmitClaim sends the claim transaction and returns its signature. The
// caller is responsible for waiting on confirmation.
func (c *Client) SubmitClaim(ctx context.Context, params SubmitParams) (string, error) {
	for i, node := range params.Proof {
		if len(node) != 32 {
			return "", fmt.Errorf("proof node %d: expected 32 bytes, got %d", i, len(node))
		}
	}

	distributor := common.PublicKeyFromString(params.DistributorAddress)
	mint := common.PublicKeyFromString(params.Mint)
	claimant := c.wallet.account.PublicKey

	claimStatus, _, err := common.FindProgramAddress(
		[][]byte{[]byte(claimStatusSeed), claimant.Bytes(), distributor.Bytes()},
		c.programID,
	)
	if err != nil {
		return "", fmt.Errorf("derive claim status address: %w", err)
	}

	vault, _, err := common.FindAssociatedTokenAddress(distributor, mint)
	if err != nil {
		return "", fmt.Errorf("derive distributor vault: %w", err)
	}
	recipient, _, err := common.FindAssociatedTokenAddress(claimant, mint)
	if err != nil {
		return "", fmt.Errorf("derive recipient token account: %w", err)
	}

	instruction := types.Instruction{
		ProgramID: c.programID,
		Accounts: []types.AccountMeta{
			{PubKey: distributor, IsSigner: false, IsWritable: true},
			{PubKey: claimStatus, IsSigner: false, IsWritable: true},
			{PubKey: vault, IsSigner: false, IsWritable: true},
			{PubKey: recipient, IsSigner: false, IsWritable: true},
			{PubKey: claimant, IsSigner: true, IsWritable: true},
			{PubKey: common.TokenProgramID, IsSigner: false, IsWritable: false},
			{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
		},
		Data: encodeClaimData(params),
	}

	latest, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        claimant,
			RecentBlockhash: latest.Blockhash,
			Instructions:    []types.Instruction{instruction},
		}),
		Signers: []types.Account{c.wallet.account},
	})
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	signature, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	c.logger.Info("claim submitted",
		zap.String("distributor", params.DistributorAddress),
		zap.String("signature", signature))
	return signature, nil
}

// encodeClaimData serializes the new_claim instruction: the anchor
// discriminator, both amounts as u64 LE, then the proof as a borsh vec of
// 32-byte nodes.
func encodeClaimData(params SubmitParams) []byte {
	discriminator := sha256.Sum256([]byte("global:new_claim"))

	data := make([]byte, 0, 8+8+8+4+32*len(params.Proof))
	data = append(data, discriminator[:8]...)
	data = binary.LittleEndian.AppendUint64(data, params.AmountUnlocked)
	data = binary.LittleEndian.AppendUint64(data, params.AmountLocked)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(params.Proof)))
	for _, node := range params.Proof {
		data = append(data, node...)
	}
	return data
}
