package domain

// TokenMetadata is the merged view of a token's on-chain and off-chain
// metadata plus its last resolved USD price. One instance per mint, shared by
// all consumers; never mutated after insertion into the metadata cache.
type TokenMetadata struct {
	Mint     string
	Name     string
	Symbol   string
	Decimals int
	Image    string   // off-chain image URL, empty when unavailable
	URI      string   // on-chain pointer to the off-chain document
	PriceUSD *float64 // nil means price unknown
}
