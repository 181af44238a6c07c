// internal/services/errors.go
package services

import "errors"

// Ledger failure taxonomy. Validation errors reject before any state is
// touched; authorization errors reject for lack of standing; state-conflict
// errors reject well-formed requests the current state forbids. All are
// surfaced synchronously and leave no mutation or event behind.
var (
	// Validation
	ErrInvalidRoyaltyConfig = errors.New("invalid royalty configuration")
	ErrIncorrectPayment     = errors.New("incorrect payment amount")
	ErrSelfReferential      = errors.New("derivative cannot reference itself as parent")
	ErrInvalidKind          = errors.New("unknown derivative kind")
	ErrDepositTooLarge      = errors.New("deposit amount too large")

	// Authorization
	ErrNotOwner                = errors.New("caller is not the current owner")
	ErrLicenseNotOwnedByCaller = errors.New("license token not owned by caller")
	ErrInsufficientGovBalance  = errors.New("insufficient governance token balance")
	ErrInsufficientFunds       = errors.New("insufficient wallet balance")

	// State conflict
	ErrAssetNotFound           = errors.New("asset not found")
	ErrOfferNotFound           = errors.New("license offer not found")
	ErrOfferExpired            = errors.New("license offer expired")
	ErrLicenseNotFound         = errors.New("license token not found")
	ErrLicenseAlreadyConsumed  = errors.New("license already consumed")
	ErrMissingLicenseForParent = errors.New("missing license for parent asset")
	ErrAssetSuspended          = errors.New("asset is suspended")
	ErrAlreadySuspended        = errors.New("asset is already suspended")
	ErrDisputeNotFound         = errors.New("dispute not found")
	ErrDisputeAlreadyResolved  = errors.New("dispute already resolved")
	ErrAlreadyVoted            = errors.New("account already voted on this dispute")
)
