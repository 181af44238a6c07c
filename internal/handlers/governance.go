// internal/handlers/governance.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipregistry-backend/internal/services"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

type GovernanceHandler struct {
	governanceService *services.GovernanceService
}

func NewGovernanceHandler(governanceService *services.GovernanceService) *GovernanceHandler {
	return &GovernanceHandler{
		governanceService: governanceService,
	}
}

func parseDisputeID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, "Invalid dispute ID", nil)
		return 0, false
	}
	return id, true
}

type mintGovernanceRequest struct {
	PaymentWei uint64 `json:"payment_wei"`
}

// POST /governance/mint
func (h *GovernanceHandler) MintTokens(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req mintGovernanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	balance, err := h.governanceService.MintGovernanceTokens(address, req.PaymentWei)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"account": address,
		"balance": balance,
	})
}

type transferGovernanceRequest struct {
	To     string `json:"to" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

// POST /governance/transfer
func (h *GovernanceHandler) TransferTokens(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req transferGovernanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}
	if !utils.IsAccountAddress(req.To) {
		utils.BadRequestResponse(c, "Invalid recipient address", nil)
		return
	}

	if err := h.governanceService.TransferGovernanceTokens(address, req.To, req.Amount); err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"from":   address,
		"to":     req.To,
		"amount": req.Amount,
	})
}

// GET /governance/balance/:address
func (h *GovernanceHandler) GetBalance(c *gin.Context) {
	account := c.Param("address")
	if !utils.IsAccountAddress(account) {
		utils.BadRequestResponse(c, "Invalid account address", nil)
		return
	}

	balance, err := h.governanceService.GovernanceBalance(account)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"account": account,
		"balance": balance,
	})
}

type createDisputeRequest struct {
	AssetID uint64 `json:"asset_id" binding:"required"`
	Reason  string `json:"reason" binding:"required"`
}

// POST /disputes
func (h *GovernanceHandler) CreateDispute(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req createDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	dispute, err := h.governanceService.CreateDispute(address, req.AssetID, req.Reason)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"dispute": dispute,
	})
}

type flagContentRequest struct {
	AssetID uint64 `json:"asset_id" binding:"required"`
	Reason  string `json:"reason" binding:"required"`
}

// POST /governance/flag
//
// Reserved for the automated moderation pipeline; authenticated with a
// service key, not a user token.
func (h *GovernanceHandler) FlagContent(c *gin.Context) {
	var req flagContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	dispute, err := h.governanceService.FlagContent(req.AssetID, req.Reason)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"dispute": dispute,
	})
}

// GET /disputes/:id
func (h *GovernanceHandler) GetDispute(c *gin.Context) {
	disputeID, ok := parseDisputeID(c)
	if !ok {
		return
	}

	dispute, err := h.governanceService.GetDispute(disputeID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"dispute": dispute,
	})
}

type voteRequest struct {
	ForRemoval *bool `json:"for_removal" binding:"required"`
}

// POST /disputes/:id/votes
func (h *GovernanceHandler) Vote(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	disputeID, ok := parseDisputeID(c)
	if !ok {
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	dispute, err := h.governanceService.Vote(disputeID, address, *req.ForRemoval)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"dispute": dispute,
	})
}

// GET /disputes/:id/votes/:address
func (h *GovernanceHandler) HasVoted(c *gin.Context) {
	disputeID, ok := parseDisputeID(c)
	if !ok {
		return
	}

	account := c.Param("address")
	if !utils.IsAccountAddress(account) {
		utils.BadRequestResponse(c, "Invalid account address", nil)
		return
	}

	voted, err := h.governanceService.HasVoted(disputeID, account)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"dispute_id": disputeID,
		"account":    account,
		"has_voted":  voted,
	})
}
