// internal/handlers/asset.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipregistry-backend/internal/services"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

type AssetHandler struct {
	registryService   *services.RegistryService
	governanceService *services.GovernanceService
}

func NewAssetHandler(registryService *services.RegistryService, governanceService *services.GovernanceService) *AssetHandler {
	return &AssetHandler{
		registryService:   registryService,
		governanceService: governanceService,
	}
}

func parseAssetID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return 0, false
	}
	return id, true
}

// POST /assets
func (h *AssetHandler) MintAsset(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.MintAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	asset, err := h.registryService.MintAsset(address, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"asset": asset,
	})
}

// GET /assets/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
	assetID, ok := parseAssetID(c, "id")
	if !ok {
		return
	}

	asset, err := h.registryService.GetAsset(assetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset": asset,
	})
}

// GET /assets/:id/owner
func (h *AssetHandler) GetOwner(c *gin.Context) {
	assetID, ok := parseAssetID(c, "id")
	if !ok {
		return
	}

	owner, err := h.registryService.OwnerOf(assetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset_id": assetID,
		"owner":    owner,
	})
}

type transferAssetRequest struct {
	To string `json:"to" binding:"required"`
}

// POST /assets/:id/transfer
func (h *AssetHandler) TransferAsset(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assetID, ok := parseAssetID(c, "id")
	if !ok {
		return
	}

	var req transferAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}
	if !utils.IsAccountAddress(req.To) {
		utils.BadRequestResponse(c, "Invalid recipient address", nil)
		return
	}

	if err := h.registryService.TransferAsset(assetID, address, req.To); err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset_id": assetID,
		"owner":    req.To,
	})
}

// GET /assets/:id/disputes
func (h *AssetHandler) GetAssetDisputes(c *gin.Context) {
	assetID, ok := parseAssetID(c, "id")
	if !ok {
		return
	}

	disputes, err := h.governanceService.DisputesForAsset(assetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	active, err := h.governanceService.HasActiveDisputes(assetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset_id":            assetID,
		"disputes":            disputes,
		"has_active_disputes": active,
	})
}
