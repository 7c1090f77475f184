package domain

import "context"

// ProfileRepository is the abstraction for any kind of database intended to
// persist TraderProfiles.
type ProfileRepository interface {
	// GetProfile returns the profile of the given account, or an empty one if
	// the account never traded.
	GetProfile(ctx context.Context, account Account) (*TraderProfile, error)
	// UpdateProfile commits changes to the profile of the given account,
	// creating it lazily the first time.
	UpdateProfile(
		ctx context.Context,
		account Account,
		updateFn func(p *TraderProfile) (*TraderProfile, error),
	) error
}
