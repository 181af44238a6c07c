// internal/models/governance.go
package models

import "time"

// GovernanceAccount holds an account's fungible voting-token balance.
// Balances grow only through mint and shrink only through transfer.
type GovernanceAccount struct {
	Address   string    `json:"address" gorm:"primaryKey;size:42"`
	Balance   uint64    `json:"balance" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Dispute is a governance review of an asset. Open -> Resolved, no other
// states; Resolved is terminal. IPRevoked is meaningful only once resolved.
type Dispute struct {
	DisputeID    uint64        `json:"dispute_id" gorm:"primaryKey;autoIncrement:false"`
	AssetID      uint64        `json:"asset_id" gorm:"not null;index"`
	Reporter     string        `json:"reporter" gorm:"size:42;not null"`
	Reason       string        `json:"reason" gorm:"type:text;not null"`
	VotesFor     uint64        `json:"votes_for" gorm:"not null;default:0"`
	VotesAgainst uint64        `json:"votes_against" gorm:"not null;default:0"`
	Status       DisputeStatus `json:"status" gorm:"type:varchar(20);not null;default:'open';index"`
	IPRevoked    bool          `json:"ip_revoked" gorm:"not null;default:false"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// DisputeVote marks that an account has voted on a dispute. The composite
// primary key is the vote-uniqueness invariant; Power is the voter's
// governance balance frozen at casting time.
type DisputeVote struct {
	DisputeID  uint64    `json:"dispute_id" gorm:"primaryKey;autoIncrement:false"`
	Voter      string    `json:"voter" gorm:"primaryKey;size:42"`
	ForRemoval bool      `json:"for_removal" gorm:"not null"`
	Power      uint64    `json:"power" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}
