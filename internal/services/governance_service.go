// internal/services/governance_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ipregistry-backend/internal/config"
	"github.com/javajoker/ipregistry-backend/internal/database"
	"github.com/javajoker/ipregistry-backend/internal/events"
	"github.com/javajoker/ipregistry-backend/internal/models"
)

// GovernanceService issues voting tokens and runs the dispute lifecycle.
// Disputes move Open -> Resolved only; resolution happens as a side effect
// of whichever vote crosses the quorum line, in the same transaction.
type GovernanceService struct {
	db     *gorm.DB
	seqs   *database.Sequences
	wallet *WalletService
	ledger config.LedgerConfig
}

func NewGovernanceService(db *gorm.DB, seqs *database.Sequences, wallet *WalletService, ledger config.LedgerConfig) *GovernanceService {
	return &GovernanceService{db: db, seqs: seqs, wallet: wallet, ledger: ledger}
}

// MintGovernanceTokens credits the fixed token grant against the exact,
// fixed mint price. Proceeds go to the treasury account.
func (s *GovernanceService) MintGovernanceTokens(caller string, paidWei uint64) (uint64, error) {
	if paidWei != s.ledger.GovernanceMintPriceWei {
		return 0, ErrIncorrectPayment
	}

	amount := s.ledger.GovernanceMintAmount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.wallet.Debit(tx, caller, paidWei, models.WalletEntryPayment, "governance:mint"); err != nil {
			return err
		}
		if err := s.wallet.Credit(tx, s.ledger.TreasuryAddress, paidWei, models.WalletEntryDeposit, "governance:mint"); err != nil {
			return err
		}
		if err := creditGovernance(tx, caller, amount); err != nil {
			return err
		}

		rec := events.NewRecorder()
		rec.Emit(events.GovernanceTokenMinted{Account: caller, Amount: amount, CostWei: paidWei})
		return rec.Flush(tx)
	})
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{"account": caller, "amount": amount}).Info("Governance tokens minted")
	return amount, nil
}

// TransferGovernanceTokens moves voting tokens between accounts. There is no
// burn: supply only moves.
func (s *GovernanceService) TransferGovernanceTokens(from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var account models.GovernanceAccount
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("address = ?", from).First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && account.Balance < amount) {
			return ErrInsufficientGovBalance
		}
		if err != nil {
			return fmt.Errorf("load governance account: %w", err)
		}

		if err := tx.Model(&models.GovernanceAccount{}).Where("address = ?", from).
			Update("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
			return fmt.Errorf("debit governance account: %w", err)
		}
		return creditGovernance(tx, to, amount)
	})
}

// CreateDispute opens a review against an asset. Reporters must hold the
// minimum governance balance; the automated-flagging sentinel bypasses the
// holder check. An asset may accumulate any number of open disputes.
func (s *GovernanceService) CreateDispute(reporter string, assetID uint64, reason string) (*models.Dispute, error) {
	var dispute models.Dispute
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockAsset(tx, assetID); err != nil {
			return err
		}

		if reporter != s.ledger.AutomatedReporter {
			balance, err := governanceBalance(tx, reporter)
			if err != nil {
				return err
			}
			if balance < s.ledger.DisputeMinBalance {
				return ErrInsufficientGovBalance
			}
		}

		disputeID, err := s.seqs.Next(tx, database.SeqDispute)
		if err != nil {
			return err
		}

		dispute = models.Dispute{
			DisputeID: disputeID,
			AssetID:   assetID,
			Reporter:  reporter,
			Reason:    reason,
			Status:    models.DisputeStatusOpen,
		}
		if err := tx.Create(&dispute).Error; err != nil {
			return fmt.Errorf("create dispute: %w", err)
		}

		rec := events.NewRecorder()
		rec.Emit(events.DisputeCreated{
			DisputeID: disputeID,
			AssetID:   assetID,
			Reporter:  reporter,
			Reason:    reason,
		})
		return rec.Flush(tx)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dispute_id": dispute.DisputeID,
		"asset_id":   assetID,
		"reporter":   reporter,
	}).Info("Dispute created")

	return &dispute, nil
}

// FlagContent is the automated-review path: it opens a dispute under the
// sentinel reporter identity.
func (s *GovernanceService) FlagContent(assetID uint64, reason string) (*models.Dispute, error) {
	return s.CreateDispute(s.ledger.AutomatedReporter, assetID, reason)
}

// Vote casts the voter's full current governance balance on one side. If
// the vote crosses the quorum policy the dispute resolves in the same
// transaction, and a revocation suspends the asset atomically with it.
func (s *GovernanceService) Vote(disputeID uint64, voter string, forRemoval bool) (*models.Dispute, error) {
	var dispute models.Dispute
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("dispute_id = ?", disputeID).First(&dispute).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDisputeNotFound
		}
		if err != nil {
			return fmt.Errorf("load dispute: %w", err)
		}
		if dispute.Status == models.DisputeStatusResolved {
			return ErrDisputeAlreadyResolved
		}

		var existing models.DisputeVote
		err = tx.Where("dispute_id = ? AND voter = ?", disputeID, voter).First(&existing).Error
		if err == nil {
			return ErrAlreadyVoted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check prior vote: %w", err)
		}

		// Voting power is the balance at casting time, frozen in the vote
		// row, not a live reference.
		power, err := governanceBalance(tx, voter)
		if err != nil {
			return err
		}
		if power == 0 {
			return ErrInsufficientGovBalance
		}

		vote := models.DisputeVote{
			DisputeID:  disputeID,
			Voter:      voter,
			ForRemoval: forRemoval,
			Power:      power,
		}
		if err := tx.Create(&vote).Error; err != nil {
			return fmt.Errorf("record vote: %w", err)
		}

		if forRemoval {
			dispute.VotesFor += power
		} else {
			dispute.VotesAgainst += power
		}

		rec := events.NewRecorder()
		rec.Emit(events.VoteCast{
			DisputeID:  disputeID,
			Voter:      voter,
			ForRemoval: forRemoval,
			Power:      power,
		})

		resolved, revoked := EvaluateQuorum(dispute.VotesFor, dispute.VotesAgainst, s.ledger.DisputeQuorum)
		if resolved {
			dispute.Status = models.DisputeStatusResolved
			dispute.IPRevoked = revoked
			if revoked {
				// A second revoking dispute against an already-suspended
				// asset still resolves; the flag is one-way.
				if err := suspendAsset(tx, dispute.AssetID); err != nil && !errors.Is(err, ErrAlreadySuspended) {
					return err
				}
			}
			rec.Emit(events.DisputeResolved{
				DisputeID:  disputeID,
				IPRevoked:  revoked,
				TotalVotes: dispute.VotesFor + dispute.VotesAgainst,
			})
		}

		if err := tx.Model(&models.Dispute{}).Where("dispute_id = ?", disputeID).
			Updates(map[string]interface{}{
				"votes_for":     dispute.VotesFor,
				"votes_against": dispute.VotesAgainst,
				"status":        dispute.Status,
				"ip_revoked":    dispute.IPRevoked,
			}).Error; err != nil {
			return fmt.Errorf("update dispute: %w", err)
		}

		return rec.Flush(tx)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dispute_id": disputeID,
		"voter":      voter,
		"resolved":   dispute.Status == models.DisputeStatusResolved,
	}).Info("Vote cast")

	return &dispute, nil
}

// EvaluateQuorum decides whether accumulated votes resolve a dispute. The
// policy is total cast power reaching the quorum with a strict majority on
// one side; a tie at quorum leaves the dispute open until broken.
func EvaluateQuorum(votesFor, votesAgainst, quorum uint64) (resolved, revoked bool) {
	if votesFor+votesAgainst < quorum {
		return false, false
	}
	if votesFor == votesAgainst {
		return false, false
	}
	return true, votesFor > votesAgainst
}

// HasVoted reports whether the account already voted on the dispute.
func (s *GovernanceService) HasVoted(disputeID uint64, account string) (bool, error) {
	var count int64
	err := s.db.Model(&models.DisputeVote{}).
		Where("dispute_id = ? AND voter = ?", disputeID, account).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return count > 0, nil
}

// GetDispute loads one dispute.
func (s *GovernanceService) GetDispute(disputeID uint64) (*models.Dispute, error) {
	var dispute models.Dispute
	err := s.db.Where("dispute_id = ?", disputeID).First(&dispute).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load dispute: %w", err)
	}
	return &dispute, nil
}

// DisputesForAsset lists all disputes ever opened against an asset.
func (s *GovernanceService) DisputesForAsset(assetID uint64) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := s.db.Where("asset_id = ?", assetID).Order("dispute_id ASC").Find(&disputes).Error
	if err != nil {
		return nil, fmt.Errorf("list disputes: %w", err)
	}
	return disputes, nil
}

// HasActiveDisputes reports whether any dispute against the asset is open.
func (s *GovernanceService) HasActiveDisputes(assetID uint64) (bool, error) {
	var count int64
	err := s.db.Model(&models.Dispute{}).
		Where("asset_id = ? AND status = ?", assetID, models.DisputeStatusOpen).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count open disputes: %w", err)
	}
	return count > 0, nil
}

// GovernanceBalance returns the account's voting-token balance.
func (s *GovernanceService) GovernanceBalance(account string) (uint64, error) {
	return governanceBalance(s.db, account)
}

func governanceBalance(tx *gorm.DB, account string) (uint64, error) {
	var row models.GovernanceAccount
	err := tx.Where("address = ?", account).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load governance account: %w", err)
	}
	return row.Balance, nil
}

func creditGovernance(tx *gorm.DB, account string, amount uint64) error {
	row := models.GovernanceAccount{Address: account, Balance: amount}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("governance_accounts.balance + ?", amount)}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("credit governance account: %w", err)
	}
	return nil
}
