package solana

import (
	"context"
	"errors"
)

// Well-known addresses.
const (
	// NativeMint is the wrapped-SOL mint.
	NativeMint = "So11111111111111111111111111111111111111112"

	// MetadataProgramID is the Metaplex token metadata program.
	MetadataProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
)

var (
	// ErrMintNotFound is returned when the mint account does not exist.
	ErrMintNotFound = errors.New("mint account not found")

	// ErrMetadataNotFound is returned when the mint has no metadata account.
	ErrMetadataNotFound = errors.New("metadata account not found")
)

// ChainReader defines the on-chain lookups needed to resolve a token.
type ChainReader interface {
	// GetTokenDecimals reads the decimals field of an SPL mint account.
	// Returns ErrMintNotFound when the account does not exist.
	GetTokenDecimals(ctx context.Context, mint string) (int, error)

	// GetTokenMetadataAccount reads the Metaplex metadata account for a mint.
	// Returns ErrMetadataNotFound when no metadata account exists.
	GetTokenMetadataAccount(ctx context.Context, mint string) (*TokenMetadataAccount, error)
}

// TokenMetadataAccount holds the descriptive fields of a Metaplex metadata
// account. Values are raw: fixed-width fields keep their NUL padding until
// the resolver cleans them.
type TokenMetadataAccount struct {
	Name   string
	Symbol string
	URI    string
}

// Confirmer awaits finality of a submitted transaction.
type Confirmer interface {
	// ConfirmTransaction blocks until the signature is confirmed or the
	// context expires.
	ConfirmTransaction(ctx context.Context, signature string) error
}
