package solana

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const metadataSeed = "metadata"

// FindProgramAddress derives a program address from seeds, walking the bump
// seed down from 255 until the candidate falls off the ed25519 curve.
func FindProgramAddress(seeds [][]byte, programID []byte) (string, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(programID)
		h.Write([]byte("ProgramDerivedAddress"))

		candidate := h.Sum(nil)
		if !isOnCurve(candidate) {
			return base58.Encode(candidate), uint8(bump), nil
		}
	}
	return "", 0, fmt.Errorf("no valid program address for seeds")
}

// isOnCurve reports whether the 32-byte value decodes as an ed25519 point.
func isOnCurve(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// MetadataAddress derives the Metaplex metadata account address for a mint.
func MetadataAddress(mint string) (string, error) {
	programID, err := base58.Decode(MetadataProgramID)
	if err != nil {
		return "", fmt.Errorf("decode metadata program id: %w", err)
	}
	mintBytes, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint %s: %w", mint, err)
	}
	if len(mintBytes) != 32 {
		return "", fmt.Errorf("mint %s: expected 32 bytes, got %d", mint, len(mintBytes))
	}

	seeds := [][]byte{[]byte(metadataSeed), programID, mintBytes}
	address, _, err := FindProgramAddress(seeds, programID)
	if err != nil {
		return "", err
	}
	return address, nil
}
