// internal/models/wallet.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// WalletBalance is an account's spendable wei. Purchases and governance
// mints debit it; royalty distributions credit it. Every movement inside a
// ledger transaction is exact, so the sum over all balances only changes by
// deposits and withdrawals.
type WalletBalance struct {
	Address   string    `json:"address" gorm:"primaryKey;size:42"`
	Wei       uint64    `json:"wei" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WalletEntry is the journal row behind each balance movement.
type WalletEntry struct {
	BaseModel
	Address   string          `json:"address" gorm:"size:42;not null;index"`
	EntryType WalletEntryType `json:"entry_type" gorm:"type:varchar(20);not null"`
	AmountWei uint64          `json:"amount_wei" gorm:"not null"`
	Debit     bool            `json:"debit" gorm:"not null"`
	Reference string          `json:"reference" gorm:"size:255"`
}

// Deposit tracks a fiat on-ramp payment that, once confirmed, credits a
// wallet balance.
type Deposit struct {
	BaseModel
	UserID          uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	Address         string        `json:"address" gorm:"size:42;not null;index"`
	PaymentIntentID string        `json:"payment_intent_id" gorm:"size:255;uniqueIndex"`
	AmountWei       uint64        `json:"amount_wei" gorm:"not null"`
	Status          DepositStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CompletedAt     *time.Time    `json:"completed_at"`
}
