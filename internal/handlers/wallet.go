// internal/handlers/wallet.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipregistry-backend/internal/config"
	"github.com/javajoker/ipregistry-backend/internal/services"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

type WalletHandler struct {
	walletService  *services.WalletService
	paymentService *services.PaymentService
	authService    *services.AuthService
	ledger         config.LedgerConfig
}

func NewWalletHandler(walletService *services.WalletService, paymentService *services.PaymentService, authService *services.AuthService, ledger config.LedgerConfig) *WalletHandler {
	return &WalletHandler{
		walletService:  walletService,
		paymentService: paymentService,
		authService:    authService,
		ledger:         ledger,
	}
}

// GET /wallet/balance
func (h *WalletHandler) GetBalance(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	balance, err := h.walletService.Balance(address)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"address":     address,
		"balance_wei": balance,
	})
}

// GET /wallet/entries
func (h *WalletHandler) GetEntries(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.walletService.Entries(address, limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"address": address,
		"entries": entries,
	})
}

type faucetRequest struct {
	AmountWei uint64 `json:"amount_wei" binding:"required"`
}

// POST /wallet/faucet
//
// Development only; disabled in production via config.
func (h *WalletHandler) Faucet(c *gin.Context) {
	if !h.ledger.DevFaucet {
		utils.ForbiddenResponse(c, "Faucet is disabled")
		return
	}

	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req faucetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if err := h.walletService.Faucet(address, req.AmountWei); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	balance, err := h.walletService.Balance(address)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"address":     address,
		"balance_wei": balance,
	})
}

type withdrawRequest struct {
	AmountWei uint64 `json:"amount_wei" binding:"required"`
}

// POST /wallet/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if err := h.walletService.Withdraw(address, req.AmountWei); err != nil {
		serviceError(c, err)
		return
	}

	balance, err := h.walletService.Balance(address)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"address":     address,
		"balance_wei": balance,
	})
}

// POST /wallet/deposits
func (h *WalletHandler) CreateDeposit(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.GetByAddress(address)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	intent, err := h.paymentService.CreateDepositIntent(user, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"deposit": intent,
	})
}

type confirmDepositRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// POST /wallet/deposits/confirm
func (h *WalletHandler) ConfirmDeposit(c *gin.Context) {
	var req confirmDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	deposit, err := h.paymentService.ConfirmDeposit(req.PaymentIntentID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"deposit": deposit,
	})
}
