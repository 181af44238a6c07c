// internal/models/derivative.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// DerivativeRecord carries the provenance of a derivative asset. AssetID
// references the IPAsset row minted in the same transaction; the record is
// immutable after creation.
type DerivativeRecord struct {
	AssetID            uint64         `json:"asset_id" gorm:"primaryKey;autoIncrement:false"`
	Creator            string         `json:"creator" gorm:"size:42;not null;index"`
	ParentIDs          pq.Int64Array  `json:"parent_ids" gorm:"type:bigint[];not null"`
	ConsumedLicenseIDs pq.Int64Array  `json:"consumed_license_ids" gorm:"type:bigint[];not null"`
	Kind               DerivativeKind `json:"kind" gorm:"type:varchar(20);not null"`
	IsCommercial       bool           `json:"is_commercial" gorm:"not null"`
	CreatedAt          time.Time      `json:"created_at"`
}

// DerivativeEdge is one parent->child attribution link, kept as rows so both
// graph directions are a single indexed query.
type DerivativeEdge struct {
	ParentID uint64 `json:"parent_id" gorm:"primaryKey;autoIncrement:false;index"`
	ChildID  uint64 `json:"child_id" gorm:"primaryKey;autoIncrement:false;index"`
}
