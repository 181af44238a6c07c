// internal/models/asset.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// RoyaltyDenominator is the fixed denominator payee shares must sum to.
const RoyaltyDenominator = 100

// IPAsset is a minted IP record. Derivatives share this table and id space;
// their provenance lives in DerivativeRecord keyed by the same AssetID.
// Owner is the only mutable column besides Suspended, which flips one way
// via dispute resolution.
type IPAsset struct {
	AssetID          uint64         `json:"asset_id" gorm:"primaryKey;autoIncrement:false"`
	Owner            string         `json:"owner" gorm:"size:42;not null;index"`
	MetadataRef      string         `json:"metadata_ref" gorm:"size:512;not null"`
	ContentHash      string         `json:"content_hash" gorm:"size:66;not null"`
	RoyaltyRecipient string         `json:"royalty_recipient" gorm:"size:42;not null"`
	RoyaltyBps       uint32         `json:"royalty_bps" gorm:"not null"`
	Payees           pq.StringArray `json:"payees" gorm:"type:text[];not null"`
	Shares           pq.Int64Array  `json:"shares" gorm:"type:bigint[];not null"`
	Suspended        bool           `json:"suspended" gorm:"not null;default:false"`
	IsDerivative     bool           `json:"is_derivative" gorm:"not null;default:false"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
