// internal/handlers/derivative.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipregistry-backend/internal/services"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

type DerivativeHandler struct {
	derivativeService *services.DerivativeService
}

func NewDerivativeHandler(derivativeService *services.DerivativeService) *DerivativeHandler {
	return &DerivativeHandler{
		derivativeService: derivativeService,
	}
}

// POST /derivatives
func (h *DerivativeHandler) CreateDerivative(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateDerivativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	record, err := h.derivativeService.CreateDerivative(address, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"derivative": record,
	})
}

// GET /derivatives/:id
func (h *DerivativeHandler) GetDerivative(c *gin.Context) {
	assetID, ok := parseAssetID(c, "id")
	if !ok {
		return
	}

	record, err := h.derivativeService.GetDerivative(assetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"derivative": record,
	})
}

// GET /assets/:id/parents
func (h *DerivativeHandler) GetParents(c *gin.Context) {
	assetID, ok := parseAssetID(c, "id")
	if !ok {
		return
	}

	parents, err := h.derivativeService.ParentsOf(assetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset_id": assetID,
		"parents":  parents,
	})
}

// GET /assets/:id/derivatives
func (h *DerivativeHandler) GetDerivatives(c *gin.Context) {
	assetID, ok := parseAssetID(c, "id")
	if !ok {
		return
	}

	children, err := h.derivativeService.DerivativesOf(assetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset_id":    assetID,
		"derivatives": children,
	})
}
