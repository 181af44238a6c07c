// internal/models/projection.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Read-side view tables. These are materialized by the projector from the
// event log only and are never authoritative: license consumption and quorum
// decisions always read ledger state, not views.

// AssetView is the gallery card for a minted asset or derivative.
type AssetView struct {
	AssetID         uint64    `json:"asset_id" gorm:"primaryKey;autoIncrement:false"`
	Owner           string    `json:"owner" gorm:"size:42;index"`
	MetadataRef     string    `json:"metadata_ref" gorm:"size:512"`
	ContentHash     string    `json:"content_hash" gorm:"size:66"`
	IsDerivative    bool      `json:"is_derivative"`
	Suspended       bool      `json:"suspended"`
	OfferCount      uint32    `json:"offer_count"`
	LicensesSold    uint64    `json:"licenses_sold"`
	DerivativeCount uint64    `json:"derivative_count"`
	OpenDisputes    uint32    `json:"open_disputes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LicenseTokenView mirrors purchased licenses for dashboards.
type LicenseTokenView struct {
	TokenID    uint64    `json:"token_id" gorm:"primaryKey;autoIncrement:false"`
	AssetID    uint64    `json:"asset_id" gorm:"index"`
	OfferIndex uint32    `json:"offer_index"`
	Buyer      string    `json:"buyer" gorm:"size:42;index"`
	PriceWei   uint64    `json:"price_wei"`
	Consumed   bool      `json:"consumed"`
	ConsumedBy *uint64   `json:"consumed_by"` // derivative asset id
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DerivativeView lists derivative provenance for the graph display.
type DerivativeView struct {
	AssetID      uint64         `json:"asset_id" gorm:"primaryKey;autoIncrement:false"`
	Creator      string         `json:"creator" gorm:"size:42;index"`
	ParentIDs    pq.Int64Array  `json:"parent_ids" gorm:"type:bigint[]"`
	Kind         DerivativeKind `json:"kind" gorm:"type:varchar(20)"`
	IsCommercial bool           `json:"is_commercial"`
	CreatedAt    time.Time      `json:"created_at"`
}

// DisputeView tracks governance activity per dispute.
type DisputeView struct {
	DisputeID    uint64        `json:"dispute_id" gorm:"primaryKey;autoIncrement:false"`
	AssetID      uint64        `json:"asset_id" gorm:"index"`
	Reporter     string        `json:"reporter" gorm:"size:42"`
	Reason       string        `json:"reason" gorm:"type:text"`
	VotesFor     uint64        `json:"votes_for"`
	VotesAgainst uint64        `json:"votes_against"`
	VoteCount    uint32        `json:"vote_count"`
	Status       DisputeStatus `json:"status" gorm:"type:varchar(20);index"`
	IPRevoked    bool          `json:"ip_revoked"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// GovernanceBalanceView approximates minted voting power per account. Token
// transfers emit no events, so this is display-only and may lag true
// balances.
type GovernanceBalanceView struct {
	Address   string    `json:"address" gorm:"primaryKey;size:42"`
	Minted    uint64    `json:"minted"`
	SpentWei  uint64    `json:"spent_wei"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectorCheckpoint remembers the last applied global position.
type ProjectorCheckpoint struct {
	Name      string    `gorm:"primaryKey;size:40"`
	Position  uint64    `gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectorApplied is the redelivery guard: one row per applied
// (transaction, sequence) pair.
type ProjectorApplied struct {
	TxID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq       uint32    `gorm:"primaryKey;autoIncrement:false"`
	AppliedAt time.Time
}
