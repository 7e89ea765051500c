// Package distributor submits merkle distributor claim transactions.
package distributor

import (
	"fmt"
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
)

// KeypairWallet signs with a locally held ed25519 keypair.
type KeypairWallet struct {
	account types.Account
}

// NewKeypairWallet builds a wallet from a base58-encoded private key.
func NewKeypairWallet(privateKey string) (*KeypairWallet, error) {
	account, err := types.AccountFromBase58(strings.TrimSpace(privateKey))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeypairWallet{account: account}, nil
}

// NewKeypairWalletFromFile reads a base58 private key from a file.
func NewKeypairWalletFromFile(path string) (*KeypairWallet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair file: %w", err)
	}
	return NewKeypairWallet(string(raw))
}

// Address returns the wallet public key in base58.
func (w *KeypairWallet) Address() string {
	return w.account.PublicKey.ToBase58()
}

// CanSign reports whether the wallet holds signing material.
func (w *KeypairWallet) CanSign() bool {
	return len(w.account.PrivateKey) > 0
}

// Account exposes the underlying keypair for transaction signing.
func (w *KeypairWallet) Account() types.Account {
	return w.account
}
