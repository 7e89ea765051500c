package domain

// AirdropType classifies how a campaign releases its tokens.
type AirdropType string

const (
	AirdropInstant AirdropType = "Instant"
	AirdropVested  AirdropType = "Vested"
)

// Airdrop is one campaign record as returned by the distribution API.
// The distributor address is the primary key. All token amounts are
// decimal-string integers in raw ledger units.
type Airdrop struct {
	CSVKey                  string  `json:"csvKey"`
	MerkleRoot              []int   `json:"merkleRoot"` // byte values; the API ships them as a number array
	Chain                   string  `json:"chain"`
	Mint                    string  `json:"mint"`
	Version                 int     `json:"version"`
	Address                 string  `json:"address"` // distributor address
	Sender                  string  `json:"sender"`
	Name                    string  `json:"name"`
	MaxNumNodes             string  `json:"maxNumNodes"`
	MaxTotalClaim           string  `json:"maxTotalClaim"`
	TotalAmountUnlocked     string  `json:"totalAmountUnlocked"`
	TotalAmountLocked       string  `json:"totalAmountLocked"`
	TotalAmountClaimed      string  `json:"totalAmountClaimed"`
	NumNodesClaimed         string  `json:"numNodesClaimed"`
	TotalClaimablePreUpdate string  `json:"totalClaimablePreUpdate"`
	TotalValue              string  `json:"totalValue"`
	TotalValueUnlocked      string  `json:"totalValueUnlocked"`
	TotalValueLocked        string  `json:"totalValueLocked"`
	StartVestingTs          int64   `json:"startVestingTs"`
	EndVestingTs            int64   `json:"endVestingTs"`
	UnlockPeriod            int64   `json:"unlockPeriod"`
	ClaimsLimit             *int64  `json:"claimsLimit"`
	LastDurationUpdateTs    *int64  `json:"lastDurationUpdateTs"`
	CreatedDt               string  `json:"createdDt"`
	ClawbackDt              *string `json:"clawbackDt"`
	IsAligned               bool    `json:"isAligned"`
	IsOnChain               bool    `json:"isOnChain"`
	IsPopulated             bool    `json:"isPopulated"`
	IsVerified              bool    `json:"isVerified"`
	IsActive                bool    `json:"isActive"`
}

// Allocation is one wallet's entitlement within a campaign, keyed by
// (distributor address, user address).
// Invariant (API-side): AmountClaimed <= AmountUnlocked.
type Allocation struct {
	Chain              string  `json:"chain"`
	DistributorAddress string  `json:"distributorAddress"`
	Address            string  `json:"address"` // user address
	AmountUnlocked     string  `json:"amountUnlocked"`
	AmountLocked       string  `json:"amountLocked"`
	AmountClaimed      string  `json:"amountClaimed"`
	IsClosed           bool    `json:"isClosed"`
	Mint               string  `json:"mint"`
	ClaimableValue     *string `json:"claimableValue"`
}

// AirdropDetails pairs a campaign with the connected wallet's allocation,
// when one exists.
type AirdropDetails struct {
	Airdrop        *Airdrop
	UserAllocation *Allocation
}
