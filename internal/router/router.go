// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/ipregistry-backend/internal/config"
	"github.com/javajoker/ipregistry-backend/internal/database"
	"github.com/javajoker/ipregistry-backend/internal/handlers"
	"github.com/javajoker/ipregistry-backend/internal/middleware"
	"github.com/javajoker/ipregistry-backend/internal/services"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	seqs := database.NewSequences()

	// Initialize services
	walletService := services.NewWalletService(db)
	registryService := services.NewRegistryService(db, seqs)
	licenseService := services.NewLicenseService(db, seqs, walletService)
	derivativeService := services.NewDerivativeService(db, seqs, cfg.Ledger)
	governanceService := services.NewGovernanceService(db, seqs, walletService, cfg.Ledger)
	authService := services.NewAuthService(db, cfg)
	paymentService := services.NewPaymentService(db, walletService, cfg)
	storageService, _ := services.NewStorageService(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	assetHandler := handlers.NewAssetHandler(registryService, governanceService)
	licenseHandler := handlers.NewLicenseHandler(licenseService)
	derivativeHandler := handlers.NewDerivativeHandler(derivativeService)
	governanceHandler := handlers.NewGovernanceHandler(governanceService)
	walletHandler := handlers.NewWalletHandler(walletService, paymentService, authService, cfg.Ledger)
	storageHandler := handlers.NewStorageHandler(storageService)
	galleryHandler := handlers.NewGalleryHandler(db)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Asset registry routes
		assets := v1.Group("/assets")
		{
			assets.GET("/:id", assetHandler.GetAsset)
			assets.GET("/:id/owner", assetHandler.GetOwner)
			assets.GET("/:id/offers", licenseHandler.GetOffers)
			assets.GET("/:id/parents", derivativeHandler.GetParents)
			assets.GET("/:id/derivatives", derivativeHandler.GetDerivatives)
			assets.GET("/:id/disputes", assetHandler.GetAssetDisputes)

			protected := assets.Group("")
			protected.Use(middleware.AuthRequired(), middleware.WriteRateLimit())
			{
				protected.POST("", assetHandler.MintAsset)
				protected.POST("/:id/transfer", assetHandler.TransferAsset)
				protected.POST("/:id/offers", licenseHandler.CreateOffer)
				protected.POST("/:id/offers/:index/purchase", licenseHandler.PurchaseLicense)
			}
		}

		// License token routes
		licenses := v1.Group("/licenses")
		licenses.Use(middleware.AuthRequired())
		{
			licenses.GET("/mine", licenseHandler.GetMyLicenses)
			licenses.GET("/:id", licenseHandler.GetLicense)
			licenses.POST("/:id/transfer", middleware.WriteRateLimit(), licenseHandler.TransferLicense)
		}

		// Derivative routes
		derivatives := v1.Group("/derivatives")
		{
			derivatives.GET("/:id", derivativeHandler.GetDerivative)
			derivatives.POST("", middleware.AuthRequired(), middleware.WriteRateLimit(), derivativeHandler.CreateDerivative)
		}

		// Governance routes
		governance := v1.Group("/governance")
		{
			governance.GET("/balance/:address", governanceHandler.GetBalance)
			governance.POST("/flag", middleware.ServiceKeyRequired(cfg.Ledger.FlagServiceKey), governanceHandler.FlagContent)

			protected := governance.Group("")
			protected.Use(middleware.AuthRequired(), middleware.WriteRateLimit())
			{
				protected.POST("/mint", governanceHandler.MintTokens)
				protected.POST("/transfer", governanceHandler.TransferTokens)
			}
		}

		// Dispute routes
		disputes := v1.Group("/disputes")
		{
			disputes.GET("/:id", governanceHandler.GetDispute)
			disputes.GET("/:id/votes/:address", governanceHandler.HasVoted)

			protected := disputes.Group("")
			protected.Use(middleware.AuthRequired(), middleware.WriteRateLimit())
			{
				protected.POST("", governanceHandler.CreateDispute)
				protected.POST("/:id/votes", governanceHandler.Vote)
			}
		}

		// Wallet routes
		wallet := v1.Group("/wallet")
		wallet.Use(middleware.AuthRequired())
		{
			wallet.GET("/balance", walletHandler.GetBalance)
			wallet.GET("/entries", walletHandler.GetEntries)
			wallet.POST("/faucet", walletHandler.Faucet)
			wallet.POST("/withdraw", walletHandler.Withdraw)
			wallet.POST("/deposits", walletHandler.CreateDeposit)
			wallet.POST("/deposits/confirm", walletHandler.ConfirmDeposit)
		}

		// Content pinning
		content := v1.Group("/content")
		content.Use(middleware.AuthRequired(), middleware.WriteRateLimit())
		{
			content.POST("", storageHandler.PinContent)
		}

		// Projected gallery views (eventually consistent)
		gallery := v1.Group("/gallery")
		{
			gallery.GET("/assets", galleryHandler.GetAssets)
			gallery.GET("/assets/:id", galleryHandler.GetAsset)
			gallery.GET("/derivatives/:id", galleryHandler.GetDerivative)
			gallery.GET("/disputes", galleryHandler.GetDisputes)
			gallery.GET("/governance/:address", galleryHandler.GetGovernanceActivity)
		}
	}

	return r
}
