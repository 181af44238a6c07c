// internal/services/derivative_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ipregistry-backend/internal/config"
	"github.com/javajoker/ipregistry-backend/internal/database"
	"github.com/javajoker/ipregistry-backend/internal/events"
	"github.com/javajoker/ipregistry-backend/internal/models"
	"github.com/javajoker/ipregistry-backend/internal/royalty"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

// DerivativeService mints derivative assets and maintains the provenance
// graph. The graph is a DAG by construction: parents must already exist when
// a derivative is created, so beyond the self-reference check no cycle
// detection is needed.
type DerivativeService struct {
	db     *gorm.DB
	seqs   *database.Sequences
	ledger config.LedgerConfig
}

type CreateDerivativeRequest struct {
	ParentIDs       []uint64              `json:"parent_ids" validate:"required,min=1"`
	LicenseTokenIDs []uint64              `json:"license_token_ids"`
	MetadataRef     string                `json:"metadata_ref" validate:"required,max=512"`
	ContentHash     string                `json:"content_hash" validate:"required,content_hash"`
	Kind            models.DerivativeKind `json:"kind" validate:"required"`
	IsCommercial    bool                  `json:"is_commercial"`
	// The derivative is itself an asset and needs its own royalty config.
	RoyaltyRecipient string   `json:"royalty_recipient" validate:"required,account_address"`
	RoyaltyBps       uint32   `json:"royalty_bps"`
	Payees           []string `json:"payees" validate:"required,min=1,dive,account_address"`
	Shares           []int64  `json:"shares" validate:"required,min=1"`
}

func NewDerivativeService(db *gorm.DB, seqs *database.Sequences, ledger config.LedgerConfig) *DerivativeService {
	return &DerivativeService{db: db, seqs: seqs, ledger: ledger}
}

// CreateDerivative mints a new asset with provenance, consuming exactly one
// unconsumed license per parent the creator does not own outright. Token
// consumption, the asset mint, and the provenance record are all-or-nothing.
func (s *DerivativeService) CreateDerivative(creator string, req *CreateDerivativeRequest) (*models.DerivativeRecord, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !req.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	if req.RoyaltyBps > 10000 {
		return nil, ErrInvalidRoyaltyConfig
	}
	if err := royalty.ValidateConfig(req.Payees, req.Shares); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoyaltyConfig, err)
	}

	parentSet := make(map[uint64]bool, len(req.ParentIDs))
	for _, id := range req.ParentIDs {
		if parentSet[id] {
			return nil, fmt.Errorf("duplicate parent asset %d", id)
		}
		parentSet[id] = true
	}

	var record models.DerivativeRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Load and lock every parent.
		parents := make(map[uint64]*models.IPAsset, len(req.ParentIDs))
		for _, parentID := range req.ParentIDs {
			asset, err := lockAsset(tx, parentID)
			if err != nil {
				return err
			}
			parents[parentID] = asset
		}

		// Check every supplied license token, and pair each with its parent.
		licensed := make(map[uint64]uint64, len(req.LicenseTokenIDs))
		for _, tokenID := range req.LicenseTokenIDs {
			var token models.LicenseToken
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("token_id = ?", tokenID).First(&token).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLicenseNotFound
			}
			if err != nil {
				return fmt.Errorf("load license token: %w", err)
			}

			if token.Consumed {
				return ErrLicenseAlreadyConsumed
			}
			if token.Owner != creator {
				return ErrLicenseNotOwnedByCaller
			}
			if !parentSet[token.AssetID] {
				return fmt.Errorf("license token %d does not reference a listed parent", tokenID)
			}
			if _, dup := licensed[token.AssetID]; dup {
				return fmt.Errorf("multiple license tokens supplied for parent %d", token.AssetID)
			}
			licensed[token.AssetID] = tokenID
		}

		// Owners of a parent need no license for it; everyone else does.
		for parentID, asset := range parents {
			// Under the deny policy a suspended parent backs no new
			// derivatives, the owner's included.
			if s.ledger.SuspendedLicenseUse == "deny" && asset.Suspended {
				return ErrAssetSuspended
			}
			if asset.Owner == creator {
				continue
			}
			if _, ok := licensed[parentID]; !ok {
				return ErrMissingLicenseForParent
			}
		}

		derivativeID, err := s.seqs.Next(tx, database.SeqIPAsset)
		if err != nil {
			return err
		}
		// The id is only allocated here, so a request listing its own
		// derivative as a parent has already failed above with
		// ErrAssetNotFound; this keeps the id space itself honest.
		if parentSet[derivativeID] {
			return ErrSelfReferential
		}

		asset := models.IPAsset{
			AssetID:          derivativeID,
			Owner:            creator,
			MetadataRef:      req.MetadataRef,
			ContentHash:      req.ContentHash,
			RoyaltyRecipient: req.RoyaltyRecipient,
			RoyaltyBps:       req.RoyaltyBps,
			Payees:           pq.StringArray(req.Payees),
			Shares:           pq.Int64Array(req.Shares),
			IsDerivative:     true,
		}
		if err := tx.Create(&asset).Error; err != nil {
			return fmt.Errorf("create derivative asset: %w", err)
		}

		consumedIDs := make([]uint64, 0, len(req.LicenseTokenIDs))
		for _, tokenID := range req.LicenseTokenIDs {
			if err := tx.Model(&models.LicenseToken{}).Where("token_id = ?", tokenID).
				Update("consumed", true).Error; err != nil {
				return fmt.Errorf("consume license token: %w", err)
			}
			consumedIDs = append(consumedIDs, tokenID)
		}

		record = models.DerivativeRecord{
			AssetID:            derivativeID,
			Creator:            creator,
			ParentIDs:          toInt64Array(req.ParentIDs),
			ConsumedLicenseIDs: toInt64Array(consumedIDs),
			Kind:               req.Kind,
			IsCommercial:       req.IsCommercial,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("create derivative record: %w", err)
		}

		for _, parentID := range req.ParentIDs {
			edge := models.DerivativeEdge{ParentID: parentID, ChildID: derivativeID}
			if err := tx.Create(&edge).Error; err != nil {
				return fmt.Errorf("create derivative edge: %w", err)
			}
		}

		rec := events.NewRecorder()
		rec.Emit(events.DerivativeCreated{
			DerivativeID:       derivativeID,
			ParentIDs:          req.ParentIDs,
			Creator:            creator,
			DerivativeKind:     string(req.Kind),
			IsCommercial:       req.IsCommercial,
			ConsumedLicenseIDs: consumedIDs,
		})
		for _, tokenID := range consumedIDs {
			rec.Emit(events.LicenseConsumed{TokenID: tokenID, DerivativeID: derivativeID})
		}
		for _, parentID := range req.ParentIDs {
			rec.Emit(events.ParentAttributed{DerivativeID: derivativeID, ParentID: parentID})
		}
		return rec.Flush(tx)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"derivative_id": record.AssetID,
		"creator":       creator,
		"parents":       len(req.ParentIDs),
		"licenses":      len(req.LicenseTokenIDs),
	}).Info("Derivative created")

	return &record, nil
}

// GetDerivative loads one provenance record.
func (s *DerivativeService) GetDerivative(assetID uint64) (*models.DerivativeRecord, error) {
	var record models.DerivativeRecord
	err := s.db.Where("asset_id = ?", assetID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load derivative record: %w", err)
	}
	return &record, nil
}

// ParentsOf returns the parent asset ids of a derivative, in edge order.
func (s *DerivativeService) ParentsOf(assetID uint64) ([]uint64, error) {
	var edges []models.DerivativeEdge
	err := s.db.Where("child_id = ?", assetID).Order("parent_id ASC").Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}
	parents := make([]uint64, len(edges))
	for i, e := range edges {
		parents[i] = e.ParentID
	}
	return parents, nil
}

// DerivativesOf returns the derivative asset ids created from a parent.
func (s *DerivativeService) DerivativesOf(assetID uint64) ([]uint64, error) {
	var edges []models.DerivativeEdge
	err := s.db.Where("parent_id = ?", assetID).Order("child_id ASC").Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("list derivatives: %w", err)
	}
	children := make([]uint64, len(edges))
	for i, e := range edges {
		children[i] = e.ChildID
	}
	return children, nil
}

func toInt64Array(ids []uint64) pq.Int64Array {
	out := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
