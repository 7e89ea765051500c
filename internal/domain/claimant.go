package domain

// ClaimantInfo is the authoritative, proof-bearing allocation record fetched
// at claim time. Raw* fields carry exact ledger-unit amounts; the unprefixed
// fields may be display-scaled by some API versions, so raw values win when
// both are present. Proof entries are hex-encoded 32-byte Merkle nodes.
type ClaimantInfo struct {
	DistributorAddress string   `json:"distributorAddress"`
	Address            string   `json:"address"`
	AmountUnlocked     string   `json:"amountUnlocked"`
	AmountLocked       string   `json:"amountLocked"`
	AmountClaimed      string   `json:"amountClaimed"`
	RawAmountUnlocked  string   `json:"rawAmountUnlocked,omitempty"`
	RawAmountLocked    string   `json:"rawAmountLocked,omitempty"`
	RawAmountClaimed   string   `json:"rawAmountClaimed,omitempty"`
	Proof              []string `json:"proof,omitempty"`
}
