package domain

import (
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

// MaxFeeBasisPoints is the hard cap of the platform fee (5%).
const MaxFeeBasisPoints = 500

// Params is the administrator-owned configuration record of the engine.
// Changes to the stake and fee apply only to offers created or accepted
// afterwards.
type Params struct {
	Admin          Account
	MinStake       uint64
	FeeBasisPoints uint64
	FeeRecipient   Account
	// AccruedNativeFees are the platform fees collected in native asset and
	// not yet withdrawn.
	AccruedNativeFees uint64
}

// NewParams returns a validated configuration record.
func NewParams(
	admin Account, minStake, feeBasisPoints uint64, feeRecipient Account,
) (*Params, error) {
	if err := admin.Validate(); err != nil {
		return nil, ErrParamsInvalidAdmin
	}
	if feeBasisPoints > MaxFeeBasisPoints {
		return nil, ErrParamsFeeTooHigh
	}
	if err := feeRecipient.Validate(); err != nil {
		return nil, ErrParamsInvalidFeeRecipient
	}
	return &Params{
		Admin:          admin,
		MinStake:       minStake,
		FeeBasisPoints: feeBasisPoints,
		FeeRecipient:   feeRecipient,
	}, nil
}

func (p *Params) checkAdmin(caller Account) error {
	if caller.IsZero() || caller != p.Admin {
		return ErrParamsNotAdmin
	}
	return nil
}

// UpdateMinStake changes the stake required to create new offers.
func (p *Params) UpdateMinStake(caller Account, minStake uint64) error {
	if err := p.checkAdmin(caller); err != nil {
		return err
	}
	p.MinStake = minStake
	return nil
}

// UpdateFeeBasisPoints changes the platform fee.
func (p *Params) UpdateFeeBasisPoints(caller Account, bps uint64) error {
	if err := p.checkAdmin(caller); err != nil {
		return err
	}
	if bps > MaxFeeBasisPoints {
		return ErrParamsFeeTooHigh
	}
	p.FeeBasisPoints = bps
	return nil
}

// UpdateFeeRecipient changes the account receiving platform fees.
func (p *Params) UpdateFeeRecipient(caller, recipient Account) error {
	if err := p.checkAdmin(caller); err != nil {
		return err
	}
	if err := recipient.Validate(); err != nil {
		return ErrParamsInvalidFeeRecipient
	}
	p.FeeRecipient = recipient
	return nil
}

// TransferAdmin hands the administrator role over to another account.
func (p *Params) TransferAdmin(caller, admin Account) error {
	if err := p.checkAdmin(caller); err != nil {
		return err
	}
	if err := admin.Validate(); err != nil {
		return ErrParamsInvalidAdmin
	}
	p.Admin = admin
	return nil
}

// AccrueNativeFee adds a native-asset fee to the withdrawable balance.
func (p *Params) AccrueNativeFee(fee uint64) error {
	accrued, err := mathutil.SafeAdd(p.AccruedNativeFees, fee)
	if err != nil {
		return ErrInvariantViolation
	}
	p.AccruedNativeFees = accrued
	return nil
}

// WithdrawFees zeroes the accrued native fees and returns the amount to be
// transferred to the fee recipient.
func (p *Params) WithdrawFees(caller Account) (uint64, error) {
	if err := p.checkAdmin(caller); err != nil {
		return 0, err
	}
	if p.AccruedNativeFees == 0 {
		return 0, ErrParamsNoAccruedFees
	}
	amount := p.AccruedNativeFees
	p.AccruedNativeFees = 0
	return amount, nil
}
