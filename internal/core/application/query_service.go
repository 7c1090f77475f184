package application

import (
	"context"
	"fmt"
	"time"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
)

// QueryService serves read-only views of offers, profiles and params.
type QueryService interface {
	// ListActiveOffers returns the Open and not expired offers in ascending
	// id order, paginated, along with their total count.
	ListActiveOffers(ctx context.Context, page domain.Page) (*OfferPage, error)
	// ListOffersByAccount returns the ids of the offers where the account was
	// maker or taker, in insertion order.
	ListOffersByAccount(
		ctx context.Context, account domain.Account,
	) ([]uint64, error)
	GetOffer(ctx context.Context, offerID uint64) (*domain.Offer, error)
	// GetProfile returns the profile and score of the account. Accounts that
	// never traded get an empty profile.
	GetProfile(ctx context.Context, account domain.Account) (*ProfileInfo, error)
	GetParams(ctx context.Context) (*domain.Params, error)
	// CancelCooldown returns the configured cancellation cooldown.
	CancelCooldown() time.Duration
}

type queryService struct {
	repoManager    ports.RepoManager
	clock          ports.Clock
	cache          ports.ProfileCache
	cancelCooldown time.Duration
}

// NewQueryService returns a QueryService. cache is optional.
func NewQueryService(
	repoManager ports.RepoManager,
	clock ports.Clock,
	cache ports.ProfileCache,
	cancelCooldown time.Duration,
) (QueryService, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	return &queryService{repoManager, clock, cache, cancelCooldown}, nil
}

func (s *queryService) ListActiveOffers(
	ctx context.Context, page domain.Page,
) (*OfferPage, error) {
	now := s.clock.Now().Unix()
	offers, total, err := s.repoManager.OfferRepository().GetActiveOffers(
		ctx, now, page,
	)
	if err != nil {
		return nil, err
	}
	return &OfferPage{Offers: offers, Total: total}, nil
}

func (s *queryService) ListOffersByAccount(
	ctx context.Context, account domain.Account,
) ([]uint64, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}
	return s.repoManager.OfferRepository().GetOfferIDsByAccount(ctx, account)
}

func (s *queryService) GetOffer(
	ctx context.Context, offerID uint64,
) (*domain.Offer, error) {
	return s.repoManager.OfferRepository().GetOffer(ctx, offerID)
}

func (s *queryService) GetProfile(
	ctx context.Context, account domain.Account,
) (*ProfileInfo, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}

	profile, ok := s.getCachedProfile(ctx, account)
	if !ok {
		p, err := s.repoManager.ProfileRepository().GetProfile(ctx, account)
		if err != nil {
			return nil, err
		}
		profile = p
		if s.cache != nil {
			s.cache.Set(ctx, profile)
		}
	}

	breakdown := profile.ScoreBreakdown(s.clock.Now().Unix())
	return &ProfileInfo{
		Profile:   *profile,
		Score:     breakdown.Total(),
		Breakdown: breakdown,
	}, nil
}

func (s *queryService) GetParams(ctx context.Context) (*domain.Params, error) {
	return s.repoManager.ParamsRepository().GetParams(ctx)
}

func (s *queryService) CancelCooldown() time.Duration {
	return s.cancelCooldown
}

func (s *queryService) getCachedProfile(
	ctx context.Context, account domain.Account,
) (*domain.TraderProfile, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, account)
}
