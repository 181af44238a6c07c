// internal/services/license_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ipregistry-backend/internal/database"
	"github.com/javajoker/ipregistry-backend/internal/events"
	"github.com/javajoker/ipregistry-backend/internal/models"
	"github.com/javajoker/ipregistry-backend/internal/royalty"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

// LicenseService is the license market: standing offers and purchases.
type LicenseService struct {
	db     *gorm.DB
	seqs   *database.Sequences
	wallet *WalletService
}

type CreateOfferRequest struct {
	PriceWei   uint64 `json:"price_wei"`
	LicenseRef string `json:"license_ref" validate:"required,max=512"`
	Expiry     int64  `json:"expiry" validate:"min=0"` // unix seconds, 0 = never
}

func NewLicenseService(db *gorm.DB, seqs *database.Sequences, wallet *WalletService) *LicenseService {
	return &LicenseService{db: db, seqs: seqs, wallet: wallet}
}

// CreateOffer appends a new offer for the asset. Only the current owner may
// list, and a suspended asset cannot originate new commerce.
func (s *LicenseService) CreateOffer(assetID uint64, caller string, req *CreateOfferRequest) (*models.LicenseOffer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var offer models.LicenseOffer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		asset, err := lockAsset(tx, assetID)
		if err != nil {
			return err
		}
		if asset.Owner != caller {
			return ErrNotOwner
		}
		if asset.Suspended {
			return ErrAssetSuspended
		}

		// Offer indexes are append-only per asset, starting at 0.
		var count int64
		if err := tx.Model(&models.LicenseOffer{}).Where("asset_id = ?", assetID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("count offers: %w", err)
		}

		offer = models.LicenseOffer{
			AssetID:         assetID,
			OfferIndex:      uint32(count),
			IPOwnerAtCreate: caller,
			PriceWei:        req.PriceWei,
			LicenseRef:      req.LicenseRef,
			Expiry:          req.Expiry,
		}
		if err := tx.Create(&offer).Error; err != nil {
			return fmt.Errorf("create offer: %w", err)
		}

		rec := events.NewRecorder()
		rec.Emit(events.LicenseOfferCreated{
			AssetID:    assetID,
			OfferIndex: offer.OfferIndex,
			Owner:      caller,
			PriceWei:   req.PriceWei,
			LicenseRef: req.LicenseRef,
			Expiry:     req.Expiry,
		})
		return rec.Flush(tx)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"asset_id":    assetID,
		"offer_index": offer.OfferIndex,
		"price_wei":   offer.PriceWei,
	}).Info("License offer created")

	return &offer, nil
}

// Purchase buys one usage right against an offer. Payment routing through
// the asset's royalty split and the token mint are one atomic transition:
// there is no state where one happened without the other. Offers have no
// sold-out flag, so the same offer can be purchased any number of times,
// each minting an independent token.
func (s *LicenseService) Purchase(assetID uint64, offerIndex uint32, buyer string, paymentWei uint64, now time.Time) (*models.LicenseToken, error) {
	var token models.LicenseToken
	err := s.db.Transaction(func(tx *gorm.DB) error {
		asset, err := lockAsset(tx, assetID)
		if err != nil {
			return err
		}

		var offer models.LicenseOffer
		err = tx.Where("asset_id = ? AND offer_index = ?", assetID, offerIndex).
			First(&offer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOfferNotFound
		}
		if err != nil {
			return fmt.Errorf("load offer: %w", err)
		}

		if offer.Expiry != 0 && now.Unix() > offer.Expiry {
			return ErrOfferExpired
		}
		// No partial payment, no change-making.
		if paymentWei != offer.PriceWei {
			return ErrIncorrectPayment
		}

		tokenID, err := s.seqs.Next(tx, database.SeqLicenseToken)
		if err != nil {
			return err
		}

		reference := fmt.Sprintf("license:%d", tokenID)
		if err := s.wallet.Debit(tx, buyer, paymentWei, models.WalletEntryPayment, reference); err != nil {
			return err
		}
		for _, payout := range royalty.Distribute(paymentWei, asset.Payees, asset.Shares) {
			if err := s.wallet.Credit(tx, payout.Payee, payout.AmountWei, models.WalletEntryRoyaltyShare, reference); err != nil {
				return err
			}
		}

		token = models.LicenseToken{
			TokenID:      tokenID,
			AssetID:      assetID,
			OfferIndex:   offerIndex,
			Owner:        buyer,
			PriceWeiPaid: paymentWei,
		}
		if err := tx.Create(&token).Error; err != nil {
			return fmt.Errorf("mint license token: %w", err)
		}

		rec := events.NewRecorder()
		rec.Emit(events.LicensePurchased{
			AssetID:    assetID,
			TokenID:    tokenID,
			Buyer:      buyer,
			OfferIndex: offerIndex,
			PriceWei:   paymentWei,
		})
		return rec.Flush(tx)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"asset_id": assetID,
		"token_id": token.TokenID,
		"buyer":    buyer,
	}).Info("License purchased")

	return &token, nil
}

// TransferLicense moves token ownership. Consumption and ownership are
// independent: consumed tokens transfer too.
func (s *LicenseService) TransferLicense(tokenID uint64, from, to string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var token models.LicenseToken
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_id = ?", tokenID).First(&token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLicenseNotFound
		}
		if err != nil {
			return fmt.Errorf("load license token: %w", err)
		}
		if token.Owner != from {
			return ErrNotOwner
		}

		if err := tx.Model(&models.LicenseToken{}).Where("token_id = ?", tokenID).
			Update("owner", to).Error; err != nil {
			return fmt.Errorf("transfer license token: %w", err)
		}
		return nil
	})
}

// GetOffers lists an asset's offers in index order.
func (s *LicenseService) GetOffers(assetID uint64) ([]models.LicenseOffer, error) {
	var offers []models.LicenseOffer
	err := s.db.Where("asset_id = ?", assetID).Order("offer_index ASC").Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

// OfferCount returns how many offers the asset has accumulated.
func (s *LicenseService) OfferCount(assetID uint64) (int64, error) {
	var count int64
	err := s.db.Model(&models.LicenseOffer{}).Where("asset_id = ?", assetID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count offers: %w", err)
	}
	return count, nil
}

// GetToken loads one license token.
func (s *LicenseService) GetToken(tokenID uint64) (*models.LicenseToken, error) {
	var token models.LicenseToken
	err := s.db.Where("token_id = ?", tokenID).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLicenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load license token: %w", err)
	}
	return &token, nil
}

// TokensOf lists an account's license tokens.
func (s *LicenseService) TokensOf(owner string) ([]models.LicenseToken, error) {
	var tokens []models.LicenseToken
	err := s.db.Where("owner = ?", owner).Order("token_id ASC").Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("list license tokens: %w", err)
	}
	return tokens, nil
}
