// Package amount holds the pure numeric and display transformations for
// token amounts. Raw ledger values are decimal-string integers end to end;
// floating point appears only after scaling, for display.
package amount

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"solana-airdrop-client/internal/domain"
)

// Scale converts a raw integer-string amount into human units (raw / 10^decimals).
// Non-numeric input scales to 0.
func Scale(raw string, decimals int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v / math.Pow(10, float64(decimals))
}

// Claimable returns max(0, unlocked - claimed) as an integer string.
// The subtraction is exact; inputs that fail to parse count as 0.
func Claimable(unlocked, claimed string) string {
	u, err := decimal.NewFromString(strings.TrimSpace(unlocked))
	if err != nil {
		u = decimal.Zero
	}
	c, err := decimal.NewFromString(strings.TrimSpace(claimed))
	if err != nil {
		c = decimal.Zero
	}
	d := u.Sub(c)
	if d.Sign() < 0 {
		return "0"
	}
	return d.String()
}

// ToUSD converts a scaled amount to its USD value, or nil when the price is
// unknown.
func ToUSD(scaled float64, priceUSD *float64) *float64 {
	if priceUSD == nil {
		return nil
	}
	v := scaled * *priceUSD
	return &v
}

// FormatToken scales a raw amount and renders it with tiered precision:
// below 0.0001 nine decimal places, below 1 six, below 1000 four, otherwise
// grouped thousands with at most four fraction digits. Trailing zeros are
// trimmed; zero and unparseable input render as "0".
func FormatToken(raw string, decimals int) string {
	v := Scale(raw, decimals)
	if v == 0 {
		return "0"
	}

	switch {
	case v < 0.0001:
		return trimTrailingZeros(strconv.FormatFloat(v, 'f', 9, 64))
	case v < 1:
		return trimTrailingZeros(strconv.FormatFloat(v, 'f', 6, 64))
	case v < 1000:
		return trimTrailingZeros(strconv.FormatFloat(v, 'f', 4, 64))
	}
	return groupThousands(trimTrailingZeros(strconv.FormatFloat(v, 'f', 4, 64)))
}

// FormatLamports renders a raw lamport amount (9 decimals).
func FormatLamports(raw string) string {
	return FormatToken(raw, 9)
}

// FormatNumber renders an already-scaled value with grouped thousands and at
// most four fraction digits.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return groupThousands(trimTrailingZeros(strconv.FormatFloat(v, 'f', 4, 64)))
}

// Classify decides whether a campaign releases everything at once or vests:
// Instant iff the unlock period is exactly one and the vesting window is
// empty (start == end).
func Classify(unlockPeriod, startVestingTs, endVestingTs int64) domain.AirdropType {
	if unlockPeriod == 1 && startVestingTs == endVestingTs {
		return domain.AirdropInstant
	}
	return domain.AirdropVested
}

// CleanString strips the NUL padding of fixed-width on-chain string fields
// and surrounding whitespace.
func CleanString(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

// TruncateAddress shortens an address for display, keeping start and end
// characters around an ellipsis.
func TruncateAddress(address string, start, end int) string {
	if len(address) <= start+end {
		return address
	}
	return address[:start] + "..." + address[len(address)-end:]
}

func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func groupThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")

	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign = "-"
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}
