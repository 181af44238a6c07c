// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipregistry-backend/internal/services"
	"github.com/javajoker/ipregistry-backend/internal/utils"
)

// serviceError translates the ledger failure taxonomy into HTTP responses.
// Validation rejects as 400, missing standing as 403, state conflicts as
// 404 or 409. Anything unrecognized is a 500 with the message withheld.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAssetNotFound),
		errors.Is(err, services.ErrOfferNotFound),
		errors.Is(err, services.ErrLicenseNotFound),
		errors.Is(err, services.ErrDisputeNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)

	case errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrLicenseNotOwnedByCaller),
		errors.Is(err, services.ErrInsufficientGovBalance):
		utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)

	case errors.Is(err, services.ErrIncorrectPayment),
		errors.Is(err, services.ErrInsufficientFunds):
		utils.ErrorResponse(c, http.StatusPaymentRequired, "PAYMENT_REQUIRED", err.Error(), nil)

	case errors.Is(err, services.ErrOfferExpired),
		errors.Is(err, services.ErrLicenseAlreadyConsumed),
		errors.Is(err, services.ErrMissingLicenseForParent),
		errors.Is(err, services.ErrAssetSuspended),
		errors.Is(err, services.ErrAlreadySuspended),
		errors.Is(err, services.ErrDisputeAlreadyResolved),
		errors.Is(err, services.ErrAlreadyVoted):
		utils.ConflictResponse(c, err.Error())

	case errors.Is(err, services.ErrInvalidRoyaltyConfig),
		errors.Is(err, services.ErrSelfReferential),
		errors.Is(err, services.ErrInvalidKind),
		errors.Is(err, services.ErrDepositTooLarge):
		utils.BadRequestResponse(c, err.Error(), nil)

	default:
		if verrs := utils.GetValidationErrors(errors.Unwrap(err)); len(verrs) > 0 {
			utils.ValidationErrorResponse(c, verrs)
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
