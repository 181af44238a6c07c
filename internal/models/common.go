// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeCreator UserType = "creator"
	UserTypeAdmin   UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type DerivativeKind string

const (
	DerivativeKindRemix         DerivativeKind = "remix"
	DerivativeKindExtension     DerivativeKind = "extension"
	DerivativeKindCollaboration DerivativeKind = "collaboration"
	DerivativeKindValidation    DerivativeKind = "validation"
	DerivativeKindCritique      DerivativeKind = "critique"
)

func (k DerivativeKind) Valid() bool {
	switch k {
	case DerivativeKindRemix, DerivativeKindExtension, DerivativeKindCollaboration,
		DerivativeKindValidation, DerivativeKindCritique:
		return true
	}
	return false
}

type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "open"
	DisputeStatusResolved DisputeStatus = "resolved"
)

type WalletEntryType string

const (
	WalletEntryDeposit      WalletEntryType = "deposit"
	WalletEntryPayment      WalletEntryType = "payment"
	WalletEntryRoyaltyShare WalletEntryType = "royalty_share"
	WalletEntryWithdrawal   WalletEntryType = "withdrawal"
)

type DepositStatus string

const (
	DepositStatusPending   DepositStatus = "pending"
	DepositStatusCompleted DepositStatus = "completed"
	DepositStatusFailed    DepositStatus = "failed"
)
