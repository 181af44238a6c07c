// internal/projector/projector.go
package projector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ipregistry-backend/internal/events"
	"github.com/javajoker/ipregistry-backend/internal/models"
)

const checkpointName = "views"

// Projector replays the ledger event log into the read-optimized view
// tables. It applies events in committed (global position) order, owns no
// write authority over ledger state, and is idempotent under redelivery:
// each (transaction, sequence) pair is applied at most once.
type Projector struct {
	db        *gorm.DB
	batchSize int
}

func New(db *gorm.DB, batchSize int) *Projector {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Projector{db: db, batchSize: batchSize}
}

// Run replays on an interval until the context is cancelled.
func (p *Projector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.RunOnce(ctx); err != nil {
				logrus.WithError(err).Error("Projector pass failed")
			}
		}
	}
}

// RunOnce drains all events past the checkpoint and returns how many were
// applied.
func (p *Projector) RunOnce(ctx context.Context) (int, error) {
	applied := 0
	for {
		select {
		case <-ctx.Done():
			return applied, ctx.Err()
		default:
		}

		n, err := p.applyBatch()
		if err != nil {
			return applied, err
		}
		applied += n
		if n < p.batchSize {
			return applied, nil
		}
	}
}

func (p *Projector) applyBatch() (int, error) {
	var count int
	err := p.db.Transaction(func(tx *gorm.DB) error {
		var checkpoint models.ProjectorCheckpoint
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", checkpointName).First(&checkpoint).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			checkpoint = models.ProjectorCheckpoint{Name: checkpointName}
			if err := tx.Create(&checkpoint).Error; err != nil {
				return fmt.Errorf("create checkpoint: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}

		var batch []models.LedgerEvent
		err = tx.Where("global_pos > ?", checkpoint.Position).
			Order("global_pos ASC").Limit(p.batchSize).Find(&batch).Error
		if err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		for _, evt := range batch {
			if err := p.applyEvent(tx, evt); err != nil {
				return fmt.Errorf("apply event %d (%s): %w", evt.GlobalPos, evt.Kind, err)
			}
			checkpoint.Position = evt.GlobalPos
			count++
		}

		return tx.Model(&models.ProjectorCheckpoint{}).Where("name = ?", checkpointName).
			Update("position", checkpoint.Position).Error
	})
	return count, err
}

func (p *Projector) applyEvent(tx *gorm.DB, evt models.LedgerEvent) error {
	// Redelivery guard: the marker insert loses against a prior delivery of
	// the same (transaction, sequence) and the event is skipped.
	marker := models.ProjectorApplied{TxID: evt.TxID, Seq: evt.Seq, AppliedAt: time.Now()}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker)
	if res.Error != nil {
		return fmt.Errorf("mark applied: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil
	}

	payload, err := events.Decode(events.Kind(evt.Kind), evt.Payload)
	if err != nil {
		return err
	}

	switch e := payload.(type) {
	case events.AssetMinted:
		view := models.AssetView{
			AssetID:     e.AssetID,
			Owner:       e.Owner,
			MetadataRef: e.MetadataRef,
			ContentHash: e.ContentHash,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&view).Error

	case events.LicenseOfferCreated:
		return tx.Model(&models.AssetView{}).Where("asset_id = ?", e.AssetID).
			Update("offer_count", gorm.Expr("offer_count + 1")).Error

	case events.LicensePurchased:
		view := models.LicenseTokenView{
			TokenID:    e.TokenID,
			AssetID:    e.AssetID,
			OfferIndex: e.OfferIndex,
			Buyer:      e.Buyer,
			PriceWei:   e.PriceWei,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&view).Error; err != nil {
			return err
		}
		return tx.Model(&models.AssetView{}).Where("asset_id = ?", e.AssetID).
			Update("licenses_sold", gorm.Expr("licenses_sold + 1")).Error

	case events.DerivativeCreated:
		asset := models.AssetView{
			AssetID:      e.DerivativeID,
			Owner:        e.Creator,
			IsDerivative: true,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&asset).Error; err != nil {
			return err
		}
		view := models.DerivativeView{
			AssetID:      e.DerivativeID,
			Creator:      e.Creator,
			ParentIDs:    int64Array(e.ParentIDs),
			Kind:         models.DerivativeKind(e.DerivativeKind),
			IsCommercial: e.IsCommercial,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&view).Error

	case events.LicenseConsumed:
		return tx.Model(&models.LicenseTokenView{}).Where("token_id = ?", e.TokenID).
			Updates(map[string]interface{}{
				"consumed":    true,
				"consumed_by": e.DerivativeID,
			}).Error

	case events.ParentAttributed:
		return tx.Model(&models.AssetView{}).Where("asset_id = ?", e.ParentID).
			Update("derivative_count", gorm.Expr("derivative_count + 1")).Error

	case events.GovernanceTokenMinted:
		view := models.GovernanceBalanceView{
			Address:  e.Account,
			Minted:   e.Amount,
			SpentWei: e.CostWei,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "address"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"minted":    gorm.Expr("governance_balance_views.minted + ?", e.Amount),
				"spent_wei": gorm.Expr("governance_balance_views.spent_wei + ?", e.CostWei),
			}),
		}).Create(&view).Error

	case events.DisputeCreated:
		view := models.DisputeView{
			DisputeID: e.DisputeID,
			AssetID:   e.AssetID,
			Reporter:  e.Reporter,
			Reason:    e.Reason,
			Status:    models.DisputeStatusOpen,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&view).Error; err != nil {
			return err
		}
		return tx.Model(&models.AssetView{}).Where("asset_id = ?", e.AssetID).
			Update("open_disputes", gorm.Expr("open_disputes + 1")).Error

	case events.VoteCast:
		column := "votes_against"
		if e.ForRemoval {
			column = "votes_for"
		}
		return tx.Model(&models.DisputeView{}).Where("dispute_id = ?", e.DisputeID).
			Updates(map[string]interface{}{
				column:       gorm.Expr(column+" + ?", e.Power),
				"vote_count": gorm.Expr("vote_count + 1"),
			}).Error

	case events.DisputeResolved:
		var view models.DisputeView
		if err := tx.Where("dispute_id = ?", e.DisputeID).First(&view).Error; err != nil {
			return fmt.Errorf("load dispute view: %w", err)
		}
		if err := tx.Model(&models.DisputeView{}).Where("dispute_id = ?", e.DisputeID).
			Updates(map[string]interface{}{
				"status":     models.DisputeStatusResolved,
				"ip_revoked": e.IPRevoked,
			}).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"open_disputes": gorm.Expr("GREATEST(open_disputes - 1, 0)"),
		}
		if e.IPRevoked {
			updates["suspended"] = true
		}
		return tx.Model(&models.AssetView{}).Where("asset_id = ?", view.AssetID).
			Updates(updates).Error
	}

	return fmt.Errorf("unhandled event kind %q", evt.Kind)
}

func int64Array(ids []uint64) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
