package ports

import (
	"context"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

// ProfileCache keeps recently read trader profiles. Implementations must be
// safe for concurrent use. Misses and failures are never fatal.
type ProfileCache interface {
	Get(ctx context.Context, account domain.Account) (*domain.TraderProfile, bool)
	// Set caches the profile unless a more recent version of it, ie. one
	// with more outcomes recorded, is cached already.
	Set(ctx context.Context, profile *domain.TraderProfile)
}
