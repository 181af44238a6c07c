// internal/services/payment_service_test.go
package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/javajoker/ipregistry-backend/internal/config"
	"github.com/javajoker/ipregistry-backend/internal/models"
)

func TestCreateDepositIntentRejectsOverflowingAmount(t *testing.T) {
	cfg := &config.Config{
		Payment: config.PaymentConfig{WeiPerCent: 10000000000000},
	}
	svc := NewPaymentService(nil, nil, cfg)

	// At the default rate the wei conversion wraps uint64 around $18.4k in
	// cents; anything past the cap must be refused before Stripe is called.
	_, err := svc.CreateDepositIntent(&models.User{}, &CreateDepositRequest{
		AmountCents: math.MaxInt64,
	})
	assert.ErrorIs(t, err, ErrDepositTooLarge)

	limit := int64(math.MaxUint64 / cfg.Payment.WeiPerCent)
	_, err = svc.CreateDepositIntent(&models.User{}, &CreateDepositRequest{
		AmountCents: limit + 1,
	})
	assert.ErrorIs(t, err, ErrDepositTooLarge)
}
