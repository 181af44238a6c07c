// internal/royalty/royalty.go
package royalty

import "errors"

// Denominator is the fixed total payee shares must sum to.
const Denominator = 100

var (
	ErrNoPayees       = errors.New("royalty: no payees")
	ErrLengthMismatch = errors.New("royalty: payees and shares length mismatch")
	ErrZeroShare      = errors.New("royalty: share must be positive")
	ErrBadShareSum    = errors.New("royalty: shares must sum to denominator")
)

// Payout is one payee's computed slice of a distribution.
type Payout struct {
	Payee     string
	AmountWei uint64
}

// ValidateConfig checks a payee/share configuration at mint time. Shares are
// never re-checked afterwards because royalty config is immutable.
func ValidateConfig(payees []string, shares []int64) error {
	if len(payees) == 0 {
		return ErrNoPayees
	}
	if len(payees) != len(shares) {
		return ErrLengthMismatch
	}
	var sum int64
	for _, s := range shares {
		if s <= 0 {
			return ErrZeroShare
		}
		sum += s
	}
	if sum != Denominator {
		return ErrBadShareSum
	}
	return nil
}

// Distribute splits amount across payees as floor(amount*share/Denominator),
// with the integer-division remainder going to the first payee so the payouts
// always sum to exactly amount. A zero amount is a no-op and returns nil.
// The configuration is assumed valid (checked at mint).
func Distribute(amountWei uint64, payees []string, shares []int64) []Payout {
	if amountWei == 0 {
		return nil
	}
	payouts := make([]Payout, len(payees))
	var distributed uint64
	for i, p := range payees {
		// Split the multiply so amounts above MaxUint64/Denominator do not
		// wrap: quotient*share stays below amount, and remainder*share is
		// at most (Denominator-1)*Denominator.
		share := uint64(shares[i])
		cut := amountWei/Denominator*share + amountWei%Denominator*share/Denominator
		payouts[i] = Payout{Payee: p, AmountWei: cut}
		distributed += cut
	}
	payouts[0].AmountWei += amountWei - distributed
	return payouts
}
