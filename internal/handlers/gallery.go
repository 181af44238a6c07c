// internal/handlers/gallery.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/ipregistry-backend/internal/models"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

// GalleryHandler serves the projected view tables. These are eventually
// consistent read models; authoritative answers come from the ledger
// endpoints.
type GalleryHandler struct {
	db *gorm.DB
}

func NewGalleryHandler(db *gorm.DB) *GalleryHandler {
	return &GalleryHandler{db: db}
}

// GET /gallery/assets
func (h *GalleryHandler) GetAssets(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	query := h.db.Model(&models.AssetView{})
	if owner := c.Query("owner"); owner != "" {
		query = query.Where("owner = ?", owner)
	}
	if c.Query("derivatives") == "true" {
		query = query.Where("is_derivative = true")
	}
	if c.Query("suspended") == "true" {
		query = query.Where("suspended = true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	var assets []models.AssetView
	query = utils.ApplySort(query, params, []string{"asset_id", "created_at", "licenses_sold", "derivative_count"})
	if err := utils.ApplyPagination(query, params).Find(&assets).Error; err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(assets, total, params))
}

// GET /gallery/assets/:id
func (h *GalleryHandler) GetAsset(c *gin.Context) {
	assetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || assetID == 0 {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	var asset models.AssetView
	if err := h.db.Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
		utils.NotFoundResponse(c, "asset")
		return
	}

	var licenses []models.LicenseTokenView
	if err := h.db.Where("asset_id = ?", assetID).Order("token_id ASC").Find(&licenses).Error; err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset":    asset,
		"licenses": licenses,
	})
}

// GET /gallery/derivatives/:id
func (h *GalleryHandler) GetDerivative(c *gin.Context) {
	assetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || assetID == 0 {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	var derivative models.DerivativeView
	if err := h.db.Where("asset_id = ?", assetID).First(&derivative).Error; err != nil {
		utils.NotFoundResponse(c, "derivative")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"derivative": derivative,
	})
}

// GET /gallery/disputes
func (h *GalleryHandler) GetDisputes(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	query := h.db.Model(&models.DisputeView{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	var disputes []models.DisputeView
	query = utils.ApplySort(query, params, []string{"dispute_id", "created_at", "vote_count"})
	if err := utils.ApplyPagination(query, params).Find(&disputes).Error; err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(disputes, total, params))
}

// GET /gallery/governance/:address
func (h *GalleryHandler) GetGovernanceActivity(c *gin.Context) {
	account := c.Param("address")
	if !utils.IsAccountAddress(account) {
		utils.BadRequestResponse(c, "Invalid account address", nil)
		return
	}

	var view models.GovernanceBalanceView
	err := h.db.Where("address = ?", account).First(&view).Error
	if err == gorm.ErrRecordNotFound {
		view = models.GovernanceBalanceView{Address: account}
	} else if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"governance": view,
	})
}
