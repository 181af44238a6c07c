// internal/models/license.go
package models

import "time"

// LicenseOffer is a standing, repeatable sale listing for usage rights to an
// asset. Offers are append-only per asset (OfferIndex starts at 0) and
// immutable once created; there is no invalidation path, so historical
// offers stay addressable.
type LicenseOffer struct {
	AssetID          uint64    `json:"asset_id" gorm:"primaryKey;autoIncrement:false"`
	OfferIndex       uint32    `json:"offer_index" gorm:"primaryKey;autoIncrement:false"`
	IPOwnerAtCreate  string    `json:"ip_owner_at_create" gorm:"size:42;not null"`
	PriceWei         uint64    `json:"price_wei" gorm:"not null"`
	LicenseRef       string    `json:"license_ref" gorm:"size:512;not null"`
	Expiry           int64     `json:"expiry" gorm:"not null"` // unix seconds, 0 = never
	CreatedAt        time.Time `json:"created_at"`
}

// LicenseToken is proof of one purchased usage right. Ownership and
// consumption are independent axes: a consumed token can still change hands,
// but Consumed flips false to true exactly once, inside derivative creation.
type LicenseToken struct {
	TokenID      uint64    `json:"token_id" gorm:"primaryKey;autoIncrement:false"`
	AssetID      uint64    `json:"asset_id" gorm:"not null;index"`
	OfferIndex   uint32    `json:"offer_index" gorm:"not null"`
	Owner        string    `json:"owner" gorm:"size:42;not null;index"`
	PriceWeiPaid uint64    `json:"price_wei_paid" gorm:"not null"`
	Consumed     bool      `json:"consumed" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
