package domain

import "errors"

// Validation errors.
var (
	// ErrAssetInvalid is returned if an asset is neither native nor a fungible
	// token with a non-empty identifier.
	ErrAssetInvalid = errors.New("asset is invalid")
	// ErrOfferSameAssets is returned if maker and taker assets are the same.
	ErrOfferSameAssets = errors.New("maker and taker assets must be different")
	// ErrOfferInvalidMakerAmount ...
	ErrOfferInvalidMakerAmount = errors.New("maker amount must be greater than zero")
	// ErrOfferInvalidTakerAmount ...
	ErrOfferInvalidTakerAmount = errors.New("taker amount must be greater than zero")
	// ErrOfferExpiryTooSoon is returned if the expiration is not far enough in
	// the future.
	ErrOfferExpiryTooSoon = errors.New("offer expiry is too soon")
	// ErrOfferInvalidAllowedTaker is returned if the maker restricts the offer
	// to himself.
	ErrOfferInvalidAllowedTaker = errors.New("allowed taker must differ from maker")
	// ErrAccountInvalid ...
	ErrAccountInvalid = errors.New("account is invalid")
	// ErrParamsFeeTooHigh is returned if the platform fee exceeds the hard cap.
	ErrParamsFeeTooHigh = errors.New("fee basis points exceed the maximum allowed")
	// ErrParamsInvalidFeeRecipient ...
	ErrParamsInvalidFeeRecipient = errors.New("fee recipient is invalid")
	// ErrParamsInvalidAdmin ...
	ErrParamsInvalidAdmin = errors.New("admin account is invalid")
)

// Precondition errors.
var (
	// ErrOfferNotFound ...
	ErrOfferNotFound = errors.New("offer not found")
	// ErrOfferNotOpen is returned for any mutation of an offer in a terminal
	// status.
	ErrOfferNotOpen = errors.New("offer is not open")
	// ErrOfferExpired is returned when accepting an offer past its expiry.
	ErrOfferExpired = errors.New("offer is expired")
	// ErrOfferNotExpired is returned when reclaiming an offer before its expiry.
	ErrOfferNotExpired = errors.New("offer is not yet expired")
	// ErrOfferNotMaker is returned when a maker-only operation is invoked by
	// another account.
	ErrOfferNotMaker = errors.New("caller is not the offer maker")
	// ErrOfferSelfAccept is returned when the maker tries to accept its own
	// offer.
	ErrOfferSelfAccept = errors.New("maker cannot accept its own offer")
	// ErrOfferTakerNotAllowed is returned when a private offer is accepted by
	// an account other than the allowed taker.
	ErrOfferTakerNotAllowed = errors.New("caller is not the allowed taker")
	// ErrOfferCancelAlreadyRequested ...
	ErrOfferCancelAlreadyRequested = errors.New("cancellation already requested")
	// ErrOfferCancelNotRequested ...
	ErrOfferCancelNotRequested = errors.New("cancellation not requested")
	// ErrOfferCooldownNotElapsed is returned when finalizing a cancellation
	// before the cooldown period is over.
	ErrOfferCooldownNotElapsed = errors.New("cancellation cooldown not elapsed")
	// ErrParamsNotAdmin is returned when an administrative operation is invoked
	// by an account other than the administrator.
	ErrParamsNotAdmin = errors.New("caller is not the administrator")
	// ErrParamsNoAccruedFees ...
	ErrParamsNoAccruedFees = errors.New("no accrued fees to withdraw")
)

// Internal errors.
var (
	// ErrInvariantViolation is returned when an internal invariant does not
	// hold. It denotes a programming error, never a user error.
	ErrInvariantViolation = errors.New("internal invariant violated")
	// ErrParamsNotFound is returned if the engine has not been initialized.
	ErrParamsNotFound = errors.New("params not initialized")
)
