package domain

// ClaimStatus is the terminal outcome of one claim attempt.
type ClaimStatus string

const (
	ClaimSucceeded ClaimStatus = "SUCCEEDED"
	ClaimFailed    ClaimStatus = "FAILED"
)

// ClaimRecord is one settled claim attempt, persisted for the history view.
type ClaimRecord struct {
	WalletAddress      string
	DistributorAddress string
	Mint               string
	AmountUnlocked     string // raw ledger units
	AmountLocked       string
	TxSignature        string // empty when the attempt failed before submission
	Status             ClaimStatus
	ErrorMessage       string // empty on success
	CreatedAt          int64  // unix ms
}
