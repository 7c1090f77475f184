package application

import (
	"errors"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

var (
	// ErrInsufficientValue is returned if the native value attached to a call
	// does not cover the amount due.
	ErrInsufficientValue = errors.New("attached native value is insufficient")
	// ErrUnexpectedNativeValue is returned if native value is attached to a
	// call that does not require it.
	ErrUnexpectedNativeValue = errors.New("native value not expected")
	// ErrTransferFailed wraps any failure of the asset transfer layer.
	ErrTransferFailed = errors.New("asset transfer failed")
	// ErrServiceUnavailable is returned in case of internal errors.
	ErrServiceUnavailable = errors.New("service is unavailable, try again later")
	// ErrWebhookManagerNotInitialized is returned when attempting to manage
	// webhooks without having configured the webhook pubsub.
	ErrWebhookManagerNotInitialized = errors.New("webhook manager is not initialized")
)

// ErrKind groups errors by how the caller is expected to react.
type ErrKind int

const (
	// ErrKindInternal is for unexpected failures and invariant violations.
	ErrKindInternal ErrKind = iota
	// ErrKindValidation is for malformed or out of range input.
	ErrKindValidation
	// ErrKindPrecondition is for operations not allowed in the current state
	// or to the caller.
	ErrKindPrecondition
	// ErrKindTransfer is for failures of the asset movements.
	ErrKindTransfer
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindValidation:
		return "validation"
	case ErrKindPrecondition:
		return "precondition"
	case ErrKindTransfer:
		return "transfer"
	default:
		return "internal"
	}
}

var (
	validationErrors = []error{
		domain.ErrAssetInvalid,
		domain.ErrOfferSameAssets,
		domain.ErrOfferInvalidMakerAmount,
		domain.ErrOfferInvalidTakerAmount,
		domain.ErrOfferExpiryTooSoon,
		domain.ErrOfferInvalidAllowedTaker,
		domain.ErrAccountInvalid,
		domain.ErrParamsFeeTooHigh,
		domain.ErrParamsInvalidFeeRecipient,
		domain.ErrParamsInvalidAdmin,
		mathutil.ErrInvalidAmount,
		mathutil.ErrOverflow,
		ErrUnexpectedNativeValue,
		ErrWebhookInvalid,
	}
	preconditionErrors = []error{
		domain.ErrOfferNotFound,
		domain.ErrOfferNotOpen,
		domain.ErrOfferExpired,
		domain.ErrOfferNotExpired,
		domain.ErrOfferNotMaker,
		domain.ErrOfferSelfAccept,
		domain.ErrOfferTakerNotAllowed,
		domain.ErrOfferCancelAlreadyRequested,
		domain.ErrOfferCancelNotRequested,
		domain.ErrOfferCooldownNotElapsed,
		domain.ErrParamsNotAdmin,
		domain.ErrParamsNoAccruedFees,
		ErrWebhookNotFound,
		ErrWebhookManagerNotInitialized,
	}
	transferErrors = []error{
		ErrInsufficientValue,
		ErrTransferFailed,
	}
)

// KindOf returns the kind of the given error. Errors not known to the
// engine are internal.
func KindOf(err error) ErrKind {
	if errors.Is(err, domain.ErrInvariantViolation) {
		return ErrKindInternal
	}
	for _, e := range transferErrors {
		if errors.Is(err, e) {
			return ErrKindTransfer
		}
	}
	for _, e := range validationErrors {
		if errors.Is(err, e) {
			return ErrKindValidation
		}
	}
	for _, e := range preconditionErrors {
		if errors.Is(err, e) {
			return ErrKindPrecondition
		}
	}
	return ErrKindInternal
}
