// internal/services/registry_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ipregistry-backend/internal/database"
	"github.com/javajoker/ipregistry-backend/internal/events"
	"github.com/javajoker/ipregistry-backend/internal/models"
	"github.com/javajoker/ipregistry-backend/internal/royalty"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

// RegistryService owns IP-asset records and their royalty configuration.
type RegistryService struct {
	db   *gorm.DB
	seqs *database.Sequences
}

type MintAssetRequest struct {
	MetadataRef      string   `json:"metadata_ref" validate:"required,max=512"`
	ContentHash      string   `json:"content_hash" validate:"required,content_hash"`
	RoyaltyRecipient string   `json:"royalty_recipient" validate:"required,account_address"`
	RoyaltyBps       uint32   `json:"royalty_bps"`
	Payees           []string `json:"payees" validate:"required,min=1,dive,account_address"`
	Shares           []int64  `json:"shares" validate:"required,min=1"`
}

func NewRegistryService(db *gorm.DB, seqs *database.Sequences) *RegistryService {
	return &RegistryService{db: db, seqs: seqs}
}

// MintAsset persists a new immutable asset record, provisions its royalty
// split, and emits AssetMinted. Royalty config is validated here and never
// re-checked: the record cannot change afterwards.
func (s *RegistryService) MintAsset(owner string, req *MintAssetRequest) (*models.IPAsset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.RoyaltyBps > 10000 {
		return nil, ErrInvalidRoyaltyConfig
	}
	if err := royalty.ValidateConfig(req.Payees, req.Shares); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoyaltyConfig, err)
	}

	var asset models.IPAsset
	err := s.db.Transaction(func(tx *gorm.DB) error {
		assetID, err := s.seqs.Next(tx, database.SeqIPAsset)
		if err != nil {
			return err
		}

		asset = models.IPAsset{
			AssetID:          assetID,
			Owner:            owner,
			MetadataRef:      req.MetadataRef,
			ContentHash:      req.ContentHash,
			RoyaltyRecipient: req.RoyaltyRecipient,
			RoyaltyBps:       req.RoyaltyBps,
			Payees:           pq.StringArray(req.Payees),
			Shares:           pq.Int64Array(req.Shares),
		}
		if err := tx.Create(&asset).Error; err != nil {
			return fmt.Errorf("create asset: %w", err)
		}

		rec := events.NewRecorder()
		rec.Emit(events.AssetMinted{
			AssetID:     assetID,
			Owner:       owner,
			MetadataRef: req.MetadataRef,
			ContentHash: req.ContentHash,
		})
		return rec.Flush(tx)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"asset_id": asset.AssetID,
		"owner":    owner,
	}).Info("Asset minted")

	return &asset, nil
}

// TransferAsset moves ownership. Suspension restricts commerce, not
// transfer, so suspended assets still change hands.
func (s *RegistryService) TransferAsset(assetID uint64, from, to string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		asset, err := lockAsset(tx, assetID)
		if err != nil {
			return err
		}
		if asset.Owner != from {
			return ErrNotOwner
		}

		if err := tx.Model(&models.IPAsset{}).Where("asset_id = ?", assetID).
			Update("owner", to).Error; err != nil {
			return fmt.Errorf("transfer asset: %w", err)
		}
		return nil
	})
}

// GetAsset loads an asset by id.
func (s *RegistryService) GetAsset(assetID uint64) (*models.IPAsset, error) {
	var asset models.IPAsset
	err := s.db.Where("asset_id = ?", assetID).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load asset: %w", err)
	}
	return &asset, nil
}

// OwnerOf returns the asset's current owner.
func (s *RegistryService) OwnerOf(assetID uint64) (string, error) {
	asset, err := s.GetAsset(assetID)
	if err != nil {
		return "", err
	}
	return asset.Owner, nil
}

// suspendAsset flips the one-way suspension flag inside tx. Only dispute
// resolution reaches this.
func suspendAsset(tx *gorm.DB, assetID uint64) error {
	asset, err := lockAsset(tx, assetID)
	if err != nil {
		return err
	}
	if asset.Suspended {
		return ErrAlreadySuspended
	}
	if err := tx.Model(&models.IPAsset{}).Where("asset_id = ?", assetID).
		Update("suspended", true).Error; err != nil {
		return fmt.Errorf("suspend asset: %w", err)
	}
	return nil
}

// lockAsset loads an asset row with a write lock for the current tx.
func lockAsset(tx *gorm.DB, assetID uint64) (*models.IPAsset, error) {
	var asset models.IPAsset
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("asset_id = ?", assetID).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load asset: %w", err)
	}
	return &asset, nil
}
