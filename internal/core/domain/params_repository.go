package domain

import "context"

// ParamsRepository is the abstraction for any kind of database intended to
// persist the single Params record.
type ParamsRepository interface {
	// InitParams stores the given record only if none exists yet, and returns
	// the stored one.
	InitParams(ctx context.Context, params *Params) (*Params, error)
	// GetParams returns the stored record, or ErrParamsNotFound.
	GetParams(ctx context.Context) (*Params, error)
	// UpdateParams allows to commit multiple changes to the record in a
	// transactional way.
	UpdateParams(
		ctx context.Context, updateFn func(p *Params) (*Params, error),
	) error
}
