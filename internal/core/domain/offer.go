package domain

import (
	"fmt"
	"time"

	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

// OfferStatus represents the different statuses that an offer can assume.
// Any status other than Open is terminal.
type OfferStatus int

const (
	OfferStatusUndefined OfferStatus = iota
	OfferStatusOpen
	OfferStatusSettled
	OfferStatusCancelled
	OfferStatusExpired
)

var offerStatusLabels = map[OfferStatus]string{
	OfferStatusUndefined: "UNDEFINED",
	OfferStatusOpen:      "OPEN",
	OfferStatusSettled:   "SETTLED",
	OfferStatusCancelled: "CANCELLED",
	OfferStatusExpired:   "EXPIRED",
}

func (s OfferStatus) String() string {
	if label, ok := offerStatusLabels[s]; ok {
		return label
	}
	return offerStatusLabels[OfferStatusUndefined]
}

// OfferTerms are the immutable terms proposed by a maker.
type OfferTerms struct {
	MakerAsset  Asset
	MakerAmount uint64
	TakerAsset  Asset
	TakerAmount uint64
	// Expiry is the unix timestamp after which the offer cannot be accepted.
	Expiry int64
	// AllowedTaker restricts the offer to a single counterpart if not empty.
	AllowedTaker Account
}

// Validate checks the terms against the maker that proposes them and the
// current time.
func (t OfferTerms) Validate(
	maker Account, now int64, minLifetime time.Duration,
) error {
	if err := maker.Validate(); err != nil {
		return err
	}
	if t.MakerAmount == 0 {
		return ErrOfferInvalidMakerAmount
	}
	if t.TakerAmount == 0 {
		return ErrOfferInvalidTakerAmount
	}
	if err := t.MakerAsset.Validate(); err != nil {
		return fmt.Errorf("maker %w", err)
	}
	if err := t.TakerAsset.Validate(); err != nil {
		return fmt.Errorf("taker %w", err)
	}
	if t.MakerAsset.Equal(t.TakerAsset) {
		return ErrOfferSameAssets
	}
	if t.Expiry <= now || t.Expiry < now+int64(minLifetime/time.Second) {
		return ErrOfferExpiryTooSoon
	}
	if !t.AllowedTaker.IsZero() {
		if err := t.AllowedTaker.Validate(); err != nil {
			return ErrOfferInvalidAllowedTaker
		}
		if t.AllowedTaker == maker {
			return ErrOfferInvalidAllowedTaker
		}
	}
	return nil
}

// Offer is the data structure representing a trade proposal locked in escrow.
type Offer struct {
	ID    uint64
	Maker Account
	OfferTerms
	// Stake is the anti-spam deposit in native asset captured at creation.
	Stake             uint64
	CreatedAt         int64
	CancelRequestedAt int64
	Taker             Account
	Status            OfferStatus
	// Fees retained by the platform at settlement.
	MakerFee  uint64
	TakerFee  uint64
	SettledAt int64
	// ClosedAt is the time the offer was cancelled or reclaimed.
	ClosedAt int64
}

// Settlement holds the amounts moved when an offer is accepted.
type Settlement struct {
	// MakerFee is retained from the taker amount, in taker asset.
	MakerFee uint64
	// TakerFee is retained from the maker amount, in maker asset.
	TakerFee uint64
	// MakerReceives is paid to the maker, in taker asset.
	MakerReceives uint64
	// TakerReceives is paid to the taker, in maker asset.
	TakerReceives uint64
}

// NewSettlement computes fees and net amounts for the given offer amounts.
// Fees are truncated towards zero.
func NewSettlement(makerAmount, takerAmount, feeBasisPoints uint64) (*Settlement, error) {
	if feeBasisPoints > mathutil.BasisPointsDenominator {
		return nil, fmt.Errorf(
			"%w: fee of %d bps", ErrInvariantViolation, feeBasisPoints,
		)
	}
	makerReceives, makerFee := mathutil.LessFee(takerAmount, feeBasisPoints)
	takerReceives, takerFee := mathutil.LessFee(makerAmount, feeBasisPoints)
	return &Settlement{
		MakerFee:      makerFee,
		TakerFee:      takerFee,
		MakerReceives: makerReceives,
		TakerReceives: takerReceives,
	}, nil
}

// NewOffer returns an Open offer for the given terms. The ID is left unset,
// it's assigned by the repository when the offer is added.
func NewOffer(
	maker Account, terms OfferTerms, stake uint64,
	now int64, minLifetime time.Duration,
) (*Offer, error) {
	if err := terms.Validate(maker, now, minLifetime); err != nil {
		return nil, err
	}
	if terms.MakerAsset.IsNative() {
		if _, err := mathutil.SafeAdd(terms.MakerAmount, stake); err != nil {
			return nil, ErrOfferInvalidMakerAmount
		}
	}

	return &Offer{
		Maker:      maker,
		OfferTerms: terms,
		Stake:      stake,
		CreatedAt:  now,
		Status:     OfferStatusOpen,
	}, nil
}

// IsOpen returns whether the offer is in Open status.
func (o *Offer) IsOpen() bool {
	return o.Status == OfferStatusOpen
}

// IsSettled returns whether the offer is in Settled status.
func (o *Offer) IsSettled() bool {
	return o.Status == OfferStatusSettled
}

// IsCancelled returns whether the offer is in Cancelled status.
func (o *Offer) IsCancelled() bool {
	return o.Status == OfferStatusCancelled
}

// IsExpired returns whether the offer is in Expired status.
func (o *Offer) IsExpired() bool {
	return o.Status == OfferStatusExpired
}

// IsActive returns whether the offer can be accepted at the given time.
func (o *Offer) IsActive(now int64) bool {
	return o.IsOpen() && now < o.Expiry
}

// IsCancelRequested returns whether the maker started the cancellation
// cooldown.
func (o *Offer) IsCancelRequested() bool {
	return o.CancelRequestedAt > 0
}

// CancelDeadline returns the time at which the cancellation can be finalized,
// or 0 if no cancellation is pending.
func (o *Offer) CancelDeadline(cooldown time.Duration) int64 {
	if !o.IsCancelRequested() {
		return 0
	}
	return o.CancelRequestedAt + int64(cooldown/time.Second)
}

// Accept brings the offer from Open to Settled status. Any pending
// cancellation is voided.
func (o *Offer) Accept(
	taker Account, now int64, feeBasisPoints uint64,
) (*Settlement, error) {
	if err := taker.Validate(); err != nil {
		return nil, err
	}
	if !o.IsOpen() {
		return nil, ErrOfferNotOpen
	}
	if now >= o.Expiry {
		return nil, ErrOfferExpired
	}
	if taker == o.Maker {
		return nil, ErrOfferSelfAccept
	}
	if !o.AllowedTaker.IsZero() && taker != o.AllowedTaker {
		return nil, ErrOfferTakerNotAllowed
	}

	settlement, err := NewSettlement(o.MakerAmount, o.TakerAmount, feeBasisPoints)
	if err != nil {
		return nil, err
	}

	o.Taker = taker
	o.Status = OfferStatusSettled
	o.CancelRequestedAt = 0
	o.MakerFee = settlement.MakerFee
	o.TakerFee = settlement.TakerFee
	o.SettledAt = now
	return settlement, nil
}

// RequestCancel starts the cancellation cooldown. The offer remains
// acceptable until the cancellation is finalized.
func (o *Offer) RequestCancel(caller Account, now int64) error {
	if caller != o.Maker {
		return ErrOfferNotMaker
	}
	if !o.IsOpen() {
		return ErrOfferNotOpen
	}
	if o.IsCancelRequested() {
		return ErrOfferCancelAlreadyRequested
	}

	o.CancelRequestedAt = now
	return nil
}

// FinalizeCancel brings the offer from Open to Cancelled status once the
// cooldown started by RequestCancel has elapsed.
func (o *Offer) FinalizeCancel(
	caller Account, now int64, cooldown time.Duration,
) error {
	if caller != o.Maker {
		return ErrOfferNotMaker
	}
	if !o.IsOpen() {
		return ErrOfferNotOpen
	}
	if !o.IsCancelRequested() {
		return ErrOfferCancelNotRequested
	}
	if now < o.CancelDeadline(cooldown) {
		return ErrOfferCooldownNotElapsed
	}

	o.Status = OfferStatusCancelled
	o.ClosedAt = now
	return nil
}

// Reclaim brings the offer from Open to Expired status once its expiry has
// been reached.
func (o *Offer) Reclaim(caller Account, now int64) error {
	if caller != o.Maker {
		return ErrOfferNotMaker
	}
	if !o.IsOpen() {
		return ErrOfferNotOpen
	}
	if now < o.Expiry {
		return ErrOfferNotExpired
	}

	o.Status = OfferStatusExpired
	o.ClosedAt = now
	return nil
}

// Refund returns the native and maker-asset amounts returned to the maker
// when the offer is closed without settlement. For native offers the whole
// amount is returned in one leg.
func (o *Offer) Refund() (native uint64, principal uint64) {
	if o.MakerAsset.IsNative() {
		return o.MakerAmount + o.Stake, 0
	}
	return o.Stake, o.MakerAmount
}
