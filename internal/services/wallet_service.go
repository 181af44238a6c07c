// internal/services/wallet_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ipregistry-backend/internal/models"
)

// WalletService is the payment primitive behind the ledger: exact-amount wei
// balances per account. Credit and Debit run inside a caller-supplied
// transaction so value movement commits or rolls back with the operation
// that caused it; no fees are deducted anywhere, which the royalty
// splitter's exactness depends on.
type WalletService struct {
	db *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// Credit adds amount to the account's balance inside tx.
func (s *WalletService) Credit(tx *gorm.DB, address string, amountWei uint64, entryType models.WalletEntryType, reference string) error {
	if amountWei == 0 {
		return nil
	}

	balance := models.WalletBalance{Address: address, Wei: amountWei}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"wei": gorm.Expr("wallet_balances.wei + ?", amountWei)}),
	}).Create(&balance).Error
	if err != nil {
		return fmt.Errorf("credit wallet %s: %w", address, err)
	}

	return s.journal(tx, address, amountWei, entryType, reference, false)
}

// Debit removes amount from the account's balance inside tx, failing with
// ErrInsufficientFunds before any mutation if the balance cannot cover it.
func (s *WalletService) Debit(tx *gorm.DB, address string, amountWei uint64, entryType models.WalletEntryType, reference string) error {
	if amountWei == 0 {
		return nil
	}

	var balance models.WalletBalance
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", address).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInsufficientFunds
	}
	if err != nil {
		return fmt.Errorf("load wallet %s: %w", address, err)
	}

	if balance.Wei < amountWei {
		return ErrInsufficientFunds
	}

	if err := tx.Model(&models.WalletBalance{}).Where("address = ?", address).
		Update("wei", gorm.Expr("wei - ?", amountWei)).Error; err != nil {
		return fmt.Errorf("debit wallet %s: %w", address, err)
	}

	return s.journal(tx, address, amountWei, entryType, reference, true)
}

// Balance returns the account's current spendable wei.
func (s *WalletService) Balance(address string) (uint64, error) {
	var balance models.WalletBalance
	err := s.db.Where("address = ?", address).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load wallet %s: %w", address, err)
	}
	return balance.Wei, nil
}

// Entries lists the account's journal, newest first.
func (s *WalletService) Entries(address string, limit int) ([]models.WalletEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.WalletEntry
	err := s.db.Where("address = ?", address).
		Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list wallet entries: %w", err)
	}
	return entries, nil
}

// Faucet credits an account directly, for development environments only.
func (s *WalletService) Faucet(address string, amountWei uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.Credit(tx, address, amountWei, models.WalletEntryDeposit, "faucet")
	})
}

// Withdraw debits earnings out of the ledger.
func (s *WalletService) Withdraw(address string, amountWei uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.Debit(tx, address, amountWei, models.WalletEntryWithdrawal, "withdrawal")
	})
}

func (s *WalletService) journal(tx *gorm.DB, address string, amountWei uint64, entryType models.WalletEntryType, reference string, debit bool) error {
	entry := models.WalletEntry{
		Address:   address,
		EntryType: entryType,
		AmountWei: amountWei,
		Debit:     debit,
		Reference: reference,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("journal wallet entry: %w", err)
	}
	return nil
}
