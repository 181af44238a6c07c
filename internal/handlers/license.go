// internal/handlers/license.go
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipregistry-backend/internal/services"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// POST /assets/:id/offers
func (h *LicenseHandler) CreateOffer(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assetID, ok := parseAssetID(c, "id")
	if !ok {
		return
	}

	var req services.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	offer, err := h.licenseService.CreateOffer(assetID, address, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"offer": offer,
	})
}

// GET /assets/:id/offers
func (h *LicenseHandler) GetOffers(c *gin.Context) {
	assetID, ok := parseAssetID(c, "id")
	if !ok {
		return
	}

	offers, err := h.licenseService.GetOffers(assetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	count, err := h.licenseService.OfferCount(assetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset_id":    assetID,
		"offers":      offers,
		"offer_count": count,
	})
}

type purchaseLicenseRequest struct {
	PaymentWei uint64 `json:"payment_wei"`
}

// POST /assets/:id/offers/:index/purchase
func (h *LicenseHandler) PurchaseLicense(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assetID, ok := parseAssetID(c, "id")
	if !ok {
		return
	}

	offerIndex, err := strconv.ParseUint(c.Param("index"), 10, 32)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer index", nil)
		return
	}

	var req purchaseLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	token, err := h.licenseService.Purchase(assetID, uint32(offerIndex), address, req.PaymentWei, time.Now())
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"license": token,
	})
}

// GET /licenses/:id
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	tokenID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tokenID == 0 {
		utils.BadRequestResponse(c, "Invalid license token ID", nil)
		return
	}

	token, err := h.licenseService.GetToken(tokenID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"license": token,
	})
}

type transferLicenseRequest struct {
	To string `json:"to" binding:"required"`
}

// POST /licenses/:id/transfer
func (h *LicenseHandler) TransferLicense(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tokenID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tokenID == 0 {
		utils.BadRequestResponse(c, "Invalid license token ID", nil)
		return
	}

	var req transferLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}
	if !utils.IsAccountAddress(req.To) {
		utils.BadRequestResponse(c, "Invalid recipient address", nil)
		return
	}

	if err := h.licenseService.TransferLicense(tokenID, address, req.To); err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token_id": tokenID,
		"owner":    req.To,
	})
}

// GET /licenses/mine
func (h *LicenseHandler) GetMyLicenses(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tokens, err := h.licenseService.TokensOf(address)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"licenses": tokens,
	})
}
