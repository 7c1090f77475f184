package ports

import (
	"context"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

// RepoManager interface defines the methods to access the repositories of
// offers, profiles and params, and to run transactions over them.
type RepoManager interface {
	OfferRepository() domain.OfferRepository
	ProfileRepository() domain.ProfileRepository
	ParamsRepository() domain.ParamsRepository

	// RunTransaction invokes the handler within a transaction. All the
	// repository calls made with the handler's context are committed together
	// if the handler returns no error, otherwise none of them is.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)

	Close()
}
