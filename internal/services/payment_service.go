// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/javajoker/ipregistry-backend/internal/config"
	"github.com/javajoker/ipregistry-backend/internal/models"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

// PaymentService is the fiat on-ramp: a confirmed Stripe payment becomes a
// wallet deposit at a fixed wei rate. The ledger core itself only ever sees
// wallet balances; Stripe's async flow stays outside the atomic boundary.
type PaymentService struct {
	db     *gorm.DB
	wallet *WalletService
	config *config.Config
}

type CreateDepositRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,min=50"`
}

type DepositIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	AmountWei    uint64 `json:"amount_wei"`
}

func NewPaymentService(db *gorm.DB, wallet *WalletService, config *config.Config) *PaymentService {
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{db: db, wallet: wallet, config: config}
}

// CreateDepositIntent opens a Stripe PaymentIntent and records the pending
// deposit it will fund.
func (s *PaymentService) CreateDepositIntent(user *models.User, req *CreateDepositRequest) (*DepositIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// The wei conversion must not wrap; at the default rate this caps a
	// single deposit around 1.8e6 USD, far above any sane card payment.
	if uint64(req.AmountCents) > math.MaxUint64/s.config.Payment.WeiPerCent {
		return nil, ErrDepositTooLarge
	}
	amountWei := uint64(req.AmountCents) * s.config.Payment.WeiPerCent

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String("usd"),
	}
	params.AddMetadata("account", user.Address)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	deposit := &models.Deposit{
		UserID:          user.ID,
		Address:         user.Address,
		PaymentIntentID: pi.ID,
		AmountWei:       amountWei,
		Status:          models.DepositStatusPending,
	}
	if err := s.db.Create(deposit).Error; err != nil {
		return nil, fmt.Errorf("record deposit: %w", err)
	}

	return &DepositIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		AmountWei:    amountWei,
	}, nil
}

// ConfirmDeposit verifies the PaymentIntent succeeded and credits the
// wallet exactly once.
func (s *PaymentService) ConfirmDeposit(paymentIntentID string) (*models.Deposit, error) {
	pi, err := paymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("payment intent not settled: %s", pi.Status)
	}

	var deposit models.Deposit
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_intent_id = ?", paymentIntentID).First(&deposit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("deposit not found")
			}
			return fmt.Errorf("load deposit: %w", err)
		}
		if deposit.Status == models.DepositStatusCompleted {
			return errors.New("deposit already confirmed")
		}

		now := time.Now()
		if err := tx.Model(&deposit).Updates(map[string]interface{}{
			"status":       models.DepositStatusCompleted,
			"completed_at": &now,
		}).Error; err != nil {
			return fmt.Errorf("complete deposit: %w", err)
		}

		return s.wallet.Credit(tx, deposit.Address, deposit.AmountWei, models.WalletEntryDeposit, "stripe:"+paymentIntentID)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"address":    deposit.Address,
		"amount_wei": deposit.AmountWei,
	}).Info("Deposit confirmed")

	return &deposit, nil
}
