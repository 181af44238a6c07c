// internal/projector/projector_test.go
package projector

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/javajoker/ipregistry-backend/internal/config"
	"github.com/javajoker/ipregistry-backend/internal/database"
	"github.com/javajoker/ipregistry-backend/internal/models"
	"github.com/javajoker/ipregistry-backend/internal/services"
)

const (
	owner = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	buyer = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

type ProjectorSuite struct {
	suite.Suite
	db          *gorm.DB
	wallet      *services.WalletService
	registry    *services.RegistryService
	licenses    *services.LicenseService
	derivatives *services.DerivativeService
	governance  *services.GovernanceService
}

func TestProjectorSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(ProjectorSuite))
}

func (s *ProjectorSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(os.Getenv("TEST_DATABASE_URL")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(db))
	s.db = db
}

func (s *ProjectorSuite) SetupTest() {
	for _, table := range []string{
		"ledger_events", "dispute_votes", "disputes", "governance_accounts",
		"derivative_edges", "derivative_records", "license_tokens",
		"license_offers", "ip_assets", "wallet_entries", "wallet_balances",
		"asset_views", "license_token_views", "derivative_views",
		"dispute_views", "governance_balance_views", "projector_checkpoints",
		"projector_applieds",
	} {
		s.Require().NoError(s.db.Exec("TRUNCATE TABLE " + table + " CASCADE").Error)
	}
	s.Require().NoError(s.db.Exec("UPDATE sequences SET value = 0").Error)

	ledger := config.LedgerConfig{
		GovernanceMintPriceWei: 1000,
		GovernanceMintAmount:   100,
		DisputeQuorum:          100,
		DisputeMinBalance:      1,
		AutomatedReporter:      "0x0000000000000000000000000000000000000a11",
		SuspendedLicenseUse:    "allow",
		TreasuryAddress:        "0x00000000000000000000000000000000000007ea",
	}

	seqs := database.NewSequences()
	s.wallet = services.NewWalletService(s.db)
	s.registry = services.NewRegistryService(s.db, seqs)
	s.licenses = services.NewLicenseService(s.db, seqs, s.wallet)
	s.derivatives = services.NewDerivativeService(s.db, seqs, ledger)
	s.governance = services.NewGovernanceService(s.db, seqs, s.wallet, ledger)
}

func (s *ProjectorSuite) seedLedger() (assetID, derivativeID, disputeID uint64) {
	asset, err := s.registry.MintAsset(owner, &services.MintAssetRequest{
		MetadataRef:      "s3://bucket/content/meta",
		ContentHash:      "0x1111111111111111111111111111111111111111111111111111111111111111",
		RoyaltyRecipient: owner,
		Payees:           []string{owner},
		Shares:           []int64{100},
	})
	s.Require().NoError(err)

	_, err = s.licenses.CreateOffer(asset.AssetID, owner, &services.CreateOfferRequest{
		PriceWei:   100,
		LicenseRef: "s3://bucket/license/terms",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.wallet.Faucet(buyer, 2000))
	token, err := s.licenses.Purchase(asset.AssetID, 0, buyer, 100, time.Now())
	s.Require().NoError(err)

	record, err := s.derivatives.CreateDerivative(buyer, &services.CreateDerivativeRequest{
		ParentIDs:        []uint64{asset.AssetID},
		LicenseTokenIDs:  []uint64{token.TokenID},
		MetadataRef:      "s3://bucket/content/deriv",
		ContentHash:      "0x2222222222222222222222222222222222222222222222222222222222222222",
		Kind:             models.DerivativeKindRemix,
		IsCommercial:     true,
		RoyaltyRecipient: buyer,
		Payees:           []string{buyer},
		Shares:           []int64{100},
	})
	s.Require().NoError(err)

	_, err = s.governance.MintGovernanceTokens(buyer, 1000)
	s.Require().NoError(err)

	dispute, err := s.governance.CreateDispute(buyer, asset.AssetID, "contested")
	s.Require().NoError(err)
	// 100 power against a quorum of 100 resolves with a revocation.
	_, err = s.governance.Vote(dispute.DisputeID, buyer, true)
	s.Require().NoError(err)

	return asset.AssetID, record.AssetID, dispute.DisputeID
}

func (s *ProjectorSuite) TestReplayBuildsViews() {
	assetID, derivativeID, disputeID := s.seedLedger()

	p := New(s.db, 3)
	applied, err := p.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(10, applied)

	var asset models.AssetView
	s.Require().NoError(s.db.Where("asset_id = ?", assetID).First(&asset).Error)
	s.Equal(owner, asset.Owner)
	s.Equal(uint32(1), asset.OfferCount)
	s.Equal(uint64(1), asset.LicensesSold)
	s.Equal(uint64(1), asset.DerivativeCount)
	s.True(asset.Suspended)
	s.Equal(uint32(0), asset.OpenDisputes)

	var derived models.AssetView
	s.Require().NoError(s.db.Where("asset_id = ?", derivativeID).First(&derived).Error)
	s.True(derived.IsDerivative)
	s.Equal(buyer, derived.Owner)

	var token models.LicenseTokenView
	s.Require().NoError(s.db.Where("asset_id = ?", assetID).First(&token).Error)
	s.True(token.Consumed)
	s.Require().NotNil(token.ConsumedBy)
	s.Equal(derivativeID, *token.ConsumedBy)

	var dispute models.DisputeView
	s.Require().NoError(s.db.Where("dispute_id = ?", disputeID).First(&dispute).Error)
	s.Equal(models.DisputeStatusResolved, dispute.Status)
	s.True(dispute.IPRevoked)
	s.Equal(uint64(100), dispute.VotesFor)
	s.Equal(uint32(1), dispute.VoteCount)

	var governance models.GovernanceBalanceView
	s.Require().NoError(s.db.Where("address = ?", buyer).First(&governance).Error)
	s.Equal(uint64(100), governance.Minted)
	s.Equal(uint64(1000), governance.SpentWei)
}

func (s *ProjectorSuite) TestReplayIsIdempotent() {
	assetID, _, _ := s.seedLedger()

	p := New(s.db, 200)
	_, err := p.RunOnce(context.Background())
	s.Require().NoError(err)

	// Reset only the checkpoint: the applied markers stay, so redelivered
	// events must be skipped instead of double-counted.
	s.Require().NoError(s.db.Exec("UPDATE projector_checkpoints SET position = 0").Error)
	applied, err := p.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(10, applied)

	var asset models.AssetView
	s.Require().NoError(s.db.Where("asset_id = ?", assetID).First(&asset).Error)
	s.Equal(uint32(1), asset.OfferCount)
	s.Equal(uint64(1), asset.LicensesSold)
	s.Equal(uint64(1), asset.DerivativeCount)
}

func (s *ProjectorSuite) TestRunOnceNoEvents() {
	p := New(s.db, 200)
	applied, err := p.RunOnce(context.Background())
	s.NoError(err)
	s.Zero(applied)
}
