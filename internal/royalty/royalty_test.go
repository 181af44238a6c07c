// internal/royalty/royalty_test.go
package royalty

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	p1 := "0x1111111111111111111111111111111111111111"
	p2 := "0x2222222222222222222222222222222222222222"

	assert.NoError(t, ValidateConfig([]string{p1, p2}, []int64{80, 20}))
	assert.NoError(t, ValidateConfig([]string{p1}, []int64{100}))

	assert.ErrorIs(t, ValidateConfig(nil, nil), ErrNoPayees)
	assert.ErrorIs(t, ValidateConfig([]string{p1, p2}, []int64{100}), ErrLengthMismatch)
	assert.ErrorIs(t, ValidateConfig([]string{p1, p2}, []int64{100, 0}), ErrZeroShare)
	assert.ErrorIs(t, ValidateConfig([]string{p1, p2}, []int64{100, -1}), ErrZeroShare)
	assert.ErrorIs(t, ValidateConfig([]string{p1, p2}, []int64{60, 20}), ErrBadShareSum)
	assert.ErrorIs(t, ValidateConfig([]string{p1, p2}, []int64{80, 40}), ErrBadShareSum)
}

func TestDistributeRemainderToFirstPayee(t *testing.T) {
	p1 := "0x1111111111111111111111111111111111111111"
	p2 := "0x2222222222222222222222222222222222222222"

	// 101 at 80/20: floors are 80 and 20, the leftover 1 goes to the first
	// payee.
	payouts := Distribute(101, []string{p1, p2}, []int64{80, 20})
	require.Len(t, payouts, 2)
	assert.Equal(t, p1, payouts[0].Payee)
	assert.Equal(t, uint64(81), payouts[0].AmountWei)
	assert.Equal(t, p2, payouts[1].Payee)
	assert.Equal(t, uint64(20), payouts[1].AmountWei)
}

func TestDistributeExact(t *testing.T) {
	p1 := "0x1111111111111111111111111111111111111111"
	p2 := "0x2222222222222222222222222222222222222222"

	payouts := Distribute(1000, []string{p1, p2}, []int64{80, 20})
	require.Len(t, payouts, 2)
	assert.Equal(t, uint64(800), payouts[0].AmountWei)
	assert.Equal(t, uint64(200), payouts[1].AmountWei)
}

func TestDistributeLargeAmount(t *testing.T) {
	p1 := "0x1111111111111111111111111111111111111111"
	p2 := "0x2222222222222222222222222222222222222222"

	// 1 ETH in wei. amount*share would wrap uint64 here; the split must not.
	payouts := Distribute(1_000_000_000_000_000_000, []string{p1, p2}, []int64{80, 20})
	require.Len(t, payouts, 2)
	assert.Equal(t, uint64(800_000_000_000_000_000), payouts[0].AmountWei)
	assert.Equal(t, uint64(200_000_000_000_000_000), payouts[1].AmountWei)

	// Worst case: MaxUint64 with a remainder.
	max := uint64(math.MaxUint64)
	payouts = Distribute(max, []string{p1, p2}, []int64{80, 20})
	var sum uint64
	for _, p := range payouts {
		sum += p.AmountWei
	}
	assert.Equal(t, max, sum)
	assert.Equal(t, max/100*20+max%100*20/100, payouts[1].AmountWei)
}

func TestDistributeZeroAmount(t *testing.T) {
	p1 := "0x1111111111111111111111111111111111111111"

	assert.Nil(t, Distribute(0, []string{p1}, []int64{100}))
}

func TestDistributeConservation(t *testing.T) {
	payees := []string{
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"0x3333333333333333333333333333333333333333",
	}
	shares := []int64{33, 33, 34}

	for amount := uint64(1); amount <= 1000; amount++ {
		payouts := Distribute(amount, payees, shares)
		var sum uint64
		for _, p := range payouts {
			sum += p.AmountWei
		}
		require.Equal(t, amount, sum, "amount %d not conserved", amount)
	}

	base := uint64(1_000_000_000_000_000_000)
	for amount := base; amount < base+1000; amount++ {
		payouts := Distribute(amount, payees, shares)
		var sum uint64
		for _, p := range payouts {
			sum += p.AmountWei
		}
		require.Equal(t, amount, sum, "amount %d not conserved", amount)
	}
}
