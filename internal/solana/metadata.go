package solana

import (
	"encoding/binary"
	"fmt"
)

// decodeMetadataAccount parses the on-chain Metaplex metadata layout. The
// account starts with a key byte, the update authority and the mint, then
// name, symbol and uri as borsh strings (u32 LE length + bytes).
func decodeMetadataAccount(data []byte) (*TokenMetadataAccount, error) {
	if len(data) < metadataHeaderSize {
		return nil, fmt.Errorf("metadata account data too short: %d bytes", len(data))
	}

	offset := metadataHeaderSize

	name, offset, err := readBorshString(data, offset)
	if err != nil {
		return nil, fmt.Errorf("read name: %w", err)
	}
	symbol, offset, err := readBorshString(data, offset)
	if err != nil {
		return nil, fmt.Errorf("read symbol: %w", err)
	}
	uri, _, err := readBorshString(data, offset)
	if err != nil {
		return nil, fmt.Errorf("read uri: %w", err)
	}

	return &TokenMetadataAccount{
		Name:   name,
		Symbol: symbol,
		URI:    uri,
	}, nil
}

// readBorshString reads a u32-length-prefixed string at offset and returns
// the string and the offset past it.
func readBorshString(data []byte, offset int) (string, int, error) {
	if offset+4 > len(data) {
		return "", 0, fmt.Errorf("truncated length prefix at offset %d", offset)
	}
	length := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4

	if length > maxMetadataStrBytes {
		return "", 0, fmt.Errorf("implausible string length %d", length)
	}
	if offset+length > len(data) {
		return "", 0, fmt.Errorf("truncated string of length %d at offset %d", length, offset)
	}
	return string(data[offset : offset+length]), offset + length, nil
}
