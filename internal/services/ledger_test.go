// internal/services/ledger_test.go
package services

import (
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
)

const (
	alice   = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob     = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	carol   = "0xcccccccccccccccccccccccccccccccccccccccc"
	dave    = "0xdddddddddddddddddddddddddddddddddddddddd"
	hashOne = "0x1111111111111111111111111111111111111111111111111111111111111111"
	hashTwo = "0x2222222222222222222222222222222222222222222222222222222222222222"
)

// LedgerSuite exercises the ledger services against a real database. It is
// skipped unless TEST_DATABASE_URL points at a disposable Postgres.
type LedgerSuite struct {
	suite.Suite
	db          *gorm.DB
	ledgerCfg   config.LedgerConfig
	wallet      *WalletService
	registry    *RegistryService
	licenses    *LicenseService
	derivatives *DerivativeService
	governance  *GovernanceService
}

func TestLedgerSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(os.Getenv("TEST_DATABASE_URL")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(db))
	s.db = db
}

func (s *LedgerSuite) SetupTest() {
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

	s.ledgerCfg = config.LedgerConfig{
		GovernanceMintPriceWei: 1000,
		GovernanceMintAmount:   100,
		DisputeQuorum:          150,
		DisputeMinBalance:      1,
		AutomatedReporter:      "0x0000000000000000000000000000000000000a11",
		SuspendedLicenseUse:    "allow",
		TreasuryAddress:        "0x00000000000000000000000000000000000007ea",
	}

	seqs := database.NewSequences()
	s.wallet = NewWalletService(s.db)
	s.registry = NewRegistryService(s.db, seqs)
	s.licenses = NewLicenseService(s.db, seqs, s.wallet)
	s.derivatives = NewDerivativeService(s.db, seqs, s.ledgerCfg)
	s.governance = NewGovernanceService(s.db, seqs, s.wallet, s.ledgerCfg)
}

func (s *LedgerSuite) mintAsset(owner string, payees []string, shares []int64) *models.IPAsset {
	asset, err := s.registry.MintAsset(owner, &MintAssetRequest{
		MetadataRef:      "s3://bucket/content/meta",
		ContentHash:      hashOne,
		RoyaltyRecipient: owner,
		RoyaltyBps:       500,
		Payees:           payees,
		Shares:           shares,
	})
	s.Require().NoError(err)
	return asset
}

func (s *LedgerSuite) eventKinds() []string {
	var kinds []string
	s.Require().NoError(s.db.Model(&models.LedgerEvent{}).
		Order("global_pos ASC").Pluck("kind", &kinds).Error)
	return kinds
}

func (s *LedgerSuite) TestMintAssignsSequentialIDs() {
	first := s.mintAsset(alice, []string{alice}, []int64{100})
	second := s.mintAsset(bob, []string{bob}, []int64{100})

	s.Equal(uint64(1), first.AssetID)
	s.Equal(uint64(2), second.AssetID)
	s.Equal([]string{"asset.minted", "asset.minted"}, s.eventKinds())
}

func (s *LedgerSuite) TestMintRejectsBadRoyaltyConfig() {
	_, err := s.registry.MintAsset(alice, &MintAssetRequest{
		MetadataRef:      "s3://bucket/content/meta",
		ContentHash:      hashOne,
		RoyaltyRecipient: alice,
		Payees:           []string{alice, bob},
		Shares:           []int64{60, 20},
	})
	s.ErrorIs(err, ErrInvalidRoyaltyConfig)

	// Failed mint leaves no record and no event.
	var count int64
	s.db.Model(&models.IPAsset{}).Count(&count)
	s.Zero(count)
	s.Empty(s.eventKinds())
}

func (s *LedgerSuite) TestTransferAsset() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})

	s.ErrorIs(s.registry.TransferAsset(asset.AssetID, bob, carol), ErrNotOwner)
	s.NoError(s.registry.TransferAsset(asset.AssetID, alice, bob))

	owner, err := s.registry.OwnerOf(asset.AssetID)
	s.NoError(err)
	s.Equal(bob, owner)

	// Transfers are not events.
	s.Equal([]string{"asset.minted"}, s.eventKinds())
}

func (s *LedgerSuite) TestPurchaseRoutesRoyalties() {
	asset := s.mintAsset(alice, []string{alice, carol}, []int64{80, 20})
	_, err := s.licenses.CreateOffer(asset.AssetID, alice, &CreateOfferRequest{
		PriceWei:   101,
		LicenseRef: "s3://bucket/license/terms",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.wallet.Faucet(bob, 500))

	// Exact payment only.
	_, err = s.licenses.Purchase(asset.AssetID, 0, bob, 100, time.Now())
	s.ErrorIs(err, ErrIncorrectPayment)

	token, err := s.licenses.Purchase(asset.AssetID, 0, bob, 101, time.Now())
	s.Require().NoError(err)
	s.Equal(uint64(1), token.TokenID)
	s.Equal(bob, token.Owner)
	s.False(token.Consumed)

	buyerBalance, _ := s.wallet.Balance(bob)
	aliceBalance, _ := s.wallet.Balance(alice)
	carolBalance, _ := s.wallet.Balance(carol)
	s.Equal(uint64(399), buyerBalance)
	// floor(101*80/100)=80 plus the remainder 1 to the first payee.
	s.Equal(uint64(81), aliceBalance)
	s.Equal(uint64(20), carolBalance)
}

func (s *LedgerSuite) TestPurchaseFailsLeaveNoTrace() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})
	_, err := s.licenses.CreateOffer(asset.AssetID, alice, &CreateOfferRequest{
		PriceWei:   100,
		LicenseRef: "s3://bucket/license/terms",
	})
	s.Require().NoError(err)

	// Buyer has no funds: the debit fails and the whole purchase rolls back.
	_, err = s.licenses.Purchase(asset.AssetID, 0, bob, 100, time.Now())
	s.ErrorIs(err, ErrInsufficientFunds)

	var tokens int64
	s.db.Model(&models.LicenseToken{}).Count(&tokens)
	s.Zero(tokens)
	s.Equal([]string{"asset.minted", "license.offer_created"}, s.eventKinds())
}

func (s *LedgerSuite) TestExpiredOffer() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})
	_, err := s.licenses.CreateOffer(asset.AssetID, alice, &CreateOfferRequest{
		PriceWei:   100,
		LicenseRef: "s3://bucket/license/terms",
		Expiry:     time.Now().Add(-time.Hour).Unix(),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.wallet.Faucet(bob, 500))
	_, err = s.licenses.Purchase(asset.AssetID, 0, bob, 100, time.Now())
	s.ErrorIs(err, ErrOfferExpired)
}

func (s *LedgerSuite) TestOfferIndexesAppend() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})

	for i := 0; i < 3; i++ {
		offer, err := s.licenses.CreateOffer(asset.AssetID, alice, &CreateOfferRequest{
			PriceWei:   uint64(100 * (i + 1)),
			LicenseRef: "s3://bucket/license/terms",
		})
		s.Require().NoError(err)
		s.Equal(uint32(i), offer.OfferIndex)
	}

	count, err := s.licenses.OfferCount(asset.AssetID)
	s.NoError(err)
	s.Equal(int64(3), count)
}

func (s *LedgerSuite) buyLicense(assetID uint64, buyer string, price uint64) *models.LicenseToken {
	s.Require().NoError(s.wallet.Faucet(buyer, price))
	token, err := s.licenses.Purchase(assetID, 0, buyer, price, time.Now())
	s.Require().NoError(err)
	return token
}

func (s *LedgerSuite) derivativeRequest(parents, tokens []uint64) *CreateDerivativeRequest {
	return &CreateDerivativeRequest{
		ParentIDs:        parents,
		LicenseTokenIDs:  tokens,
		MetadataRef:      "s3://bucket/content/deriv",
		ContentHash:      hashTwo,
		Kind:             models.DerivativeKindRemix,
		IsCommercial:     true,
		RoyaltyRecipient: bob,
		Payees:           []string{bob},
		Shares:           []int64{100},
	}
}

func (s *LedgerSuite) TestDerivativeConsumesLicense() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})
	_, err := s.licenses.CreateOffer(asset.AssetID, alice, &CreateOfferRequest{
		PriceWei:   100,
		LicenseRef: "s3://bucket/license/terms",
	})
	s.Require().NoError(err)
	token := s.buyLicense(asset.AssetID, bob, 100)

	record, err := s.derivatives.CreateDerivative(bob, s.derivativeRequest(
		[]uint64{asset.AssetID}, []uint64{token.TokenID}))
	s.Require().NoError(err)

	// The derivative shares the asset id space.
	s.Equal(uint64(2), record.AssetID)

	derived, err := s.registry.GetAsset(record.AssetID)
	s.NoError(err)
	s.True(derived.IsDerivative)
	s.Equal(bob, derived.Owner)

	spent, err := s.licenses.GetToken(token.TokenID)
	s.NoError(err)
	s.True(spent.Consumed)

	parents, err := s.derivatives.ParentsOf(record.AssetID)
	s.NoError(err)
	s.Equal([]uint64{asset.AssetID}, parents)

	children, err := s.derivatives.DerivativesOf(asset.AssetID)
	s.NoError(err)
	s.Equal([]uint64{record.AssetID}, children)

	kinds := s.eventKinds()
	s.Equal([]string{
		"asset.minted",
		"license.offer_created",
		"license.purchased",
		"derivative.created",
		"license.consumed",
		"derivative.parent_attributed",
	}, kinds)
}

func (s *LedgerSuite) TestLicenseSingleUse() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})
	_, err := s.licenses.CreateOffer(asset.AssetID, alice, &CreateOfferRequest{
		PriceWei:   100,
		LicenseRef: "s3://bucket/license/terms",
	})
	s.Require().NoError(err)
	token := s.buyLicense(asset.AssetID, bob, 100)

	_, err = s.derivatives.CreateDerivative(bob, s.derivativeRequest(
		[]uint64{asset.AssetID}, []uint64{token.TokenID}))
	s.Require().NoError(err)

	// The same token cannot back a second derivative.
	_, err = s.derivatives.CreateDerivative(bob, s.derivativeRequest(
		[]uint64{asset.AssetID}, []uint64{token.TokenID}))
	s.ErrorIs(err, ErrLicenseAlreadyConsumed)
}

func (s *LedgerSuite) TestDerivativeRequiresLicensePerForeignParent() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})

	_, err := s.derivatives.CreateDerivative(bob, s.derivativeRequest(
		[]uint64{asset.AssetID}, nil))
	s.ErrorIs(err, ErrMissingLicenseForParent)

	// Owners need no license for their own assets.
	_, err = s.derivatives.CreateDerivative(alice, &CreateDerivativeRequest{
		ParentIDs:        []uint64{asset.AssetID},
		MetadataRef:      "s3://bucket/content/deriv",
		ContentHash:      hashTwo,
		Kind:             models.DerivativeKindExtension,
		RoyaltyRecipient: alice,
		Payees:           []string{alice},
		Shares:           []int64{100},
	})
	s.NoError(err)
}

func (s *LedgerSuite) TestDerivativeRejectsForeignLicense() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})
	_, err := s.licenses.CreateOffer(asset.AssetID, alice, &CreateOfferRequest{
		PriceWei:   100,
		LicenseRef: "s3://bucket/license/terms",
	})
	s.Require().NoError(err)
	token := s.buyLicense(asset.AssetID, carol, 100)

	// Bob cannot spend Carol's token.
	_, err = s.derivatives.CreateDerivative(bob, s.derivativeRequest(
		[]uint64{asset.AssetID}, []uint64{token.TokenID}))
	s.ErrorIs(err, ErrLicenseNotOwnedByCaller)

	// Carol transfers it to Bob; now it spends.
	s.Require().NoError(s.licenses.TransferLicense(token.TokenID, carol, bob))
	_, err = s.derivatives.CreateDerivative(bob, s.derivativeRequest(
		[]uint64{asset.AssetID}, []uint64{token.TokenID}))
	s.NoError(err)
}

func (s *LedgerSuite) mintGovernance(account string) {
	s.Require().NoError(s.wallet.Faucet(account, s.ledgerCfg.GovernanceMintPriceWei))
	_, err := s.governance.MintGovernanceTokens(account, s.ledgerCfg.GovernanceMintPriceWei)
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestGovernanceMintExactPrice() {
	s.Require().NoError(s.wallet.Faucet(carol, 5000))

	_, err := s.governance.MintGovernanceTokens(carol, 999)
	s.ErrorIs(err, ErrIncorrectPayment)
	_, err = s.governance.MintGovernanceTokens(carol, 1001)
	s.ErrorIs(err, ErrIncorrectPayment)

	balance, err := s.governance.MintGovernanceTokens(carol, 1000)
	s.NoError(err)
	s.Equal(uint64(100), balance)

	treasury, _ := s.wallet.Balance(s.ledgerCfg.TreasuryAddress)
	s.Equal(uint64(1000), treasury)
}

func (s *LedgerSuite) TestDisputeLifecycle() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})

	// Reporters must hold governance tokens.
	_, err := s.governance.CreateDispute(carol, asset.AssetID, "plagiarism")
	s.ErrorIs(err, ErrInsufficientGovBalance)

	s.mintGovernance(carol)
	dispute, err := s.governance.CreateDispute(carol, asset.AssetID, "plagiarism")
	s.Require().NoError(err)
	s.Equal(uint64(1), dispute.DisputeID)
	s.Equal(models.DisputeStatusOpen, dispute.Status)

	// Quorum is 150: one 100-power vote keeps it open.
	after, err := s.governance.Vote(dispute.DisputeID, carol, true)
	s.Require().NoError(err)
	s.Equal(models.DisputeStatusOpen, after.Status)
	s.Equal(uint64(100), after.VotesFor)

	// Same voter cannot vote twice.
	_, err = s.governance.Vote(dispute.DisputeID, carol, true)
	s.ErrorIs(err, ErrAlreadyVoted)

	// Accounts without tokens cannot vote.
	_, err = s.governance.Vote(dispute.DisputeID, bob, true)
	s.ErrorIs(err, ErrInsufficientGovBalance)

	// A second holder crosses quorum with a majority for removal.
	s.mintGovernance(dave)
	after, err = s.governance.Vote(dispute.DisputeID, dave, true)
	s.Require().NoError(err)
	s.Equal(models.DisputeStatusResolved, after.Status)
	s.True(after.IPRevoked)

	// Resolution suspended the asset atomically.
	suspended, err := s.registry.GetAsset(asset.AssetID)
	s.NoError(err)
	s.True(suspended.Suspended)

	// Suspended assets cannot list new offers.
	_, err = s.licenses.CreateOffer(asset.AssetID, alice, &CreateOfferRequest{
		PriceWei:   100,
		LicenseRef: "s3://bucket/license/terms",
	})
	s.ErrorIs(err, ErrAssetSuspended)

	// Resolved disputes accept no further votes.
	s.mintGovernance(bob)
	_, err = s.governance.Vote(dispute.DisputeID, bob, false)
	s.ErrorIs(err, ErrDisputeAlreadyResolved)
}

func (s *LedgerSuite) TestDisputeMajorityAgainstKeepsAsset() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})

	s.mintGovernance(carol)
	s.mintGovernance(dave)
	// Dave doubles his power with a second mint.
	s.mintGovernance(dave)

	dispute, err := s.governance.CreateDispute(carol, asset.AssetID, "dispute")
	s.Require().NoError(err)

	_, err = s.governance.Vote(dispute.DisputeID, carol, true)
	s.Require().NoError(err)
	after, err := s.governance.Vote(dispute.DisputeID, dave, false)
	s.Require().NoError(err)

	s.Equal(models.DisputeStatusResolved, after.Status)
	s.False(after.IPRevoked)

	kept, err := s.registry.GetAsset(asset.AssetID)
	s.NoError(err)
	s.False(kept.Suspended)
}

func (s *LedgerSuite) TestAutomatedFlagBypassesHolderCheck() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})

	dispute, err := s.governance.FlagContent(asset.AssetID, "automated match")
	s.Require().NoError(err)
	s.Equal(s.ledgerCfg.AutomatedReporter, dispute.Reporter)

	active, err := s.governance.HasActiveDisputes(asset.AssetID)
	s.NoError(err)
	s.True(active)
}

func (s *LedgerSuite) TestVotePowerFrozenAtCast() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})
	s.mintGovernance(carol)

	dispute, err := s.governance.CreateDispute(carol, asset.AssetID, "dispute")
	s.Require().NoError(err)

	after, err := s.governance.Vote(dispute.DisputeID, carol, true)
	s.Require().NoError(err)
	s.Equal(uint64(100), after.VotesFor)

	// Transferring tokens after casting does not change the recorded power.
	s.Require().NoError(s.governance.TransferGovernanceTokens(carol, dave, 100))
	loaded, err := s.governance.GetDispute(dispute.DisputeID)
	s.NoError(err)
	s.Equal(uint64(100), loaded.VotesFor)
}

func (s *LedgerSuite) TestDerivativeCannotListItselfAsParent() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})

	// The next asset id is only allocated mid-transaction, so naming it as
	// a parent fails the existence check.
	_, err := s.derivatives.CreateDerivative(alice, s.derivativeRequest(
		[]uint64{asset.AssetID + 1}, nil))
	s.ErrorIs(err, ErrAssetNotFound)
}

func (s *LedgerSuite) TestSuspendedParentLicenseUsePolicy() {
	asset := s.mintAsset(alice, []string{alice}, []int64{100})
	_, err := s.licenses.CreateOffer(asset.AssetID, alice, &CreateOfferRequest{
		PriceWei:   100,
		LicenseRef: "s3://bucket/license/terms",
	})
	s.Require().NoError(err)
	token := s.buyLicense(asset.AssetID, bob, 100)

	// Suspend the parent through a resolved dispute.
	s.mintGovernance(carol)
	s.mintGovernance(dave)
	dispute, err := s.governance.CreateDispute(carol, asset.AssetID, "plagiarism")
	s.Require().NoError(err)
	_, err = s.governance.Vote(dispute.DisputeID, carol, true)
	s.Require().NoError(err)
	after, err := s.governance.Vote(dispute.DisputeID, dave, true)
	s.Require().NoError(err)
	s.Require().True(after.IPRevoked)

	denyCfg := s.ledgerCfg
	denyCfg.SuspendedLicenseUse = "deny"
	deny := NewDerivativeService(s.db, database.NewSequences(), denyCfg)

	// Under deny a suspended parent backs no new derivatives, with or
	// without a valid license.
	_, err = deny.CreateDerivative(bob, s.derivativeRequest(
		[]uint64{asset.AssetID}, []uint64{token.TokenID}))
	s.ErrorIs(err, ErrAssetSuspended)

	// The owner gets no exemption from the policy either.
	_, err = deny.CreateDerivative(alice, s.derivativeRequest(
		[]uint64{asset.AssetID}, nil))
	s.ErrorIs(err, ErrAssetSuspended)

	// Nothing was consumed by the refusals.
	var refused models.LicenseToken
	s.Require().NoError(s.db.Where("token_id = ?", token.TokenID).First(&refused).Error)
	s.False(refused.Consumed)

	// Under the default allow policy the existing license still works.
	record, err := s.derivatives.CreateDerivative(bob, s.derivativeRequest(
		[]uint64{asset.AssetID}, []uint64{token.TokenID}))
	s.NoError(err)
	s.NotZero(record.AssetID)
}
