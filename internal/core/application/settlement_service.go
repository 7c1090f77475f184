package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

const (
	// DefaultCancelCooldown is the delay between a cancellation request and
	// its finalization.
	DefaultCancelCooldown = 30 * time.Minute
	// DefaultMinOfferLifetime is the minimum distance between the creation
	// and the expiry of an offer.
	DefaultMinOfferLifetime = time.Hour
)

// SettlementService drives the lifecycle of offers: it locks the maker's
// funds in escrow, settles trades and returns the locked funds when offers
// are cancelled or expired.
type SettlementService interface {
	// CreateOffer locks the maker's funds and the current minimum stake in
	// escrow and returns the id of the new offer. value is the amount of
	// native asset attached to the call.
	CreateOffer(
		ctx context.Context,
		caller domain.Account,
		terms domain.OfferTerms,
		value uint64,
	) (uint64, error)
	// AcceptOffer settles the offer with the caller as taker.
	AcceptOffer(
		ctx context.Context,
		caller domain.Account,
		offerID uint64,
		value uint64,
	) (*domain.Offer, error)
	// RequestCancel starts the cancellation cooldown of an offer.
	RequestCancel(
		ctx context.Context, caller domain.Account, offerID uint64,
	) (*domain.Offer, error)
	// FinalizeCancel cancels the offer once the cooldown elapsed and returns
	// the locked funds to the maker.
	FinalizeCancel(
		ctx context.Context, caller domain.Account, offerID uint64,
	) (*domain.Offer, error)
	// ReclaimExpired closes an offer past its expiry and returns the locked
	// funds to the maker.
	ReclaimExpired(
		ctx context.Context, caller domain.Account, offerID uint64,
	) (*domain.Offer, error)
}

type settlementService struct {
	repoManager ports.RepoManager
	transfer    ports.AssetTransfer
	clock       ports.Clock
	cache       ports.ProfileCache
	events      *eventDispatcher
	locker      *offerLocker

	cancelCooldown   time.Duration
	minOfferLifetime time.Duration
}

// NewSettlementService returns a SettlementService. cache and publishers are
// optional.
func NewSettlementService(
	repoManager ports.RepoManager,
	transfer ports.AssetTransfer,
	clock ports.Clock,
	cache ports.ProfileCache,
	cancelCooldown, minOfferLifetime time.Duration,
	publishers ...ports.EventPublisher,
) (SettlementService, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if transfer == nil {
		return nil, fmt.Errorf("missing asset transfer")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	if cancelCooldown < 0 {
		return nil, fmt.Errorf("cancel cooldown must not be negative")
	}
	if minOfferLifetime < 0 {
		return nil, fmt.Errorf("min offer lifetime must not be negative")
	}

	return &settlementService{
		repoManager:      repoManager,
		transfer:         transfer,
		clock:            clock,
		cache:            cache,
		events:           newEventDispatcher(publishers...),
		locker:           newOfferLocker(),
		cancelCooldown:   cancelCooldown,
		minOfferLifetime: minOfferLifetime,
	}, nil
}

func (s *settlementService) CreateOffer(
	ctx context.Context,
	caller domain.Account,
	terms domain.OfferTerms,
	value uint64,
) (uint64, error) {
	now := s.clock.Now().Unix()
	if err := terms.Validate(caller, now, s.minOfferLifetime); err != nil {
		return 0, err
	}

	native := domain.NativeAsset()
	plan := newTransferPlan()

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			params, err := s.repoManager.ParamsRepository().GetParams(ctx)
			if err != nil {
				return nil, err
			}

			offer, err := domain.NewOffer(
				caller, terms, params.MinStake, now, s.minOfferLifetime,
			)
			if err != nil {
				return nil, err
			}

			required := offer.Stake
			if offer.MakerAsset.IsNative() {
				required += offer.MakerAmount
			}
			if value < required {
				return nil, fmt.Errorf(
					"%w: got %d, expected at least %d",
					ErrInsufficientValue, value, required,
				)
			}

			if _, err := s.repoManager.OfferRepository().AddOffer(
				ctx, offer,
			); err != nil {
				return nil, err
			}

			plan.in(native, caller, value).out(native, caller, value-required)
			if !offer.MakerAsset.IsNative() {
				plan.in(offer.MakerAsset, caller, offer.MakerAmount)
			}

			return offer, plan.execute(ctx, s.transfer)
		},
	)
	if err != nil {
		plan.rollback(ctx, s.transfer)
		return 0, err
	}

	offer := res.(*domain.Offer)
	s.logTransfers("offer created", offer.ID, plan)
	s.events.dispatch(
		ctx, domain.NewOfferEvent(domain.EventOfferCreated, offer, caller, now),
	)
	return offer.ID, nil
}

func (s *settlementService) AcceptOffer(
	ctx context.Context,
	caller domain.Account,
	offerID uint64,
	value uint64,
) (*domain.Offer, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	// Released as soon as the transaction ends, events are published
	// without holding it.
	release := s.locker.acquire(offerID)
	defer release()

	now := s.clock.Now().Unix()
	native := domain.NativeAsset()
	plan := newTransferPlan()
	var profiles []domain.TraderProfile

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			params, err := s.repoManager.ParamsRepository().GetParams(ctx)
			if err != nil {
				return nil, err
			}

			var offer *domain.Offer
			var settlement *domain.Settlement
			if err := s.repoManager.OfferRepository().UpdateOffer(
				ctx, offerID, func(o *domain.Offer) (*domain.Offer, error) {
					st, err := o.Accept(caller, now, params.FeeBasisPoints)
					if err != nil {
						return nil, err
					}
					if err := checkAcceptValue(o, value); err != nil {
						return nil, err
					}
					offer, settlement = o, st
					return o, nil
				},
			); err != nil {
				return nil, err
			}

			received := map[domain.Account]uint64{
				offer.Maker: settlement.MakerReceives,
				offer.Taker: settlement.TakerReceives,
			}
			for _, account := range sortedAccounts(offer.Maker, offer.Taker) {
				amount := received[account]
				if err := s.repoManager.ProfileRepository().UpdateProfile(
					ctx, account,
					func(p *domain.TraderProfile) (*domain.TraderProfile, error) {
						p.RecordTrade(amount, now)
						profiles = append(profiles, *p)
						return p, nil
					},
				); err != nil {
					return nil, err
				}
			}

			// Taker's side, with refund of any excess native value.
			if offer.TakerAsset.IsNative() {
				plan.in(native, caller, value).
					out(native, caller, value-offer.TakerAmount)
			} else {
				plan.in(offer.TakerAsset, caller, offer.TakerAmount)
			}

			// Fees: native ones accrue for later withdrawal, the others go
			// straight to the fee recipient.
			nativeFees := uint64(0)
			fees := []struct {
				asset  domain.Asset
				amount uint64
			}{
				{offer.TakerAsset, settlement.MakerFee},
				{offer.MakerAsset, settlement.TakerFee},
			}
			for _, fee := range fees {
				if fee.asset.IsNative() {
					nativeFees += fee.amount
					continue
				}
				plan.out(fee.asset, params.FeeRecipient, fee.amount)
			}
			if nativeFees > 0 {
				if err := s.repoManager.ParamsRepository().UpdateParams(
					ctx, func(p *domain.Params) (*domain.Params, error) {
						if err := p.AccrueNativeFee(nativeFees); err != nil {
							return nil, err
						}
						return p, nil
					},
				); err != nil {
					return nil, err
				}
			}

			plan.out(offer.TakerAsset, offer.Maker, settlement.MakerReceives).
				out(offer.MakerAsset, offer.Taker, settlement.TakerReceives).
				out(native, offer.Maker, offer.Stake)

			return offer, plan.execute(ctx, s.transfer)
		},
	)
	if err != nil {
		plan.rollback(ctx, s.transfer)
		return nil, err
	}
	release()

	offer := res.(*domain.Offer)
	s.cacheProfiles(ctx, profiles)
	s.logTransfers("offer accepted", offer.ID, plan)
	s.events.dispatch(
		ctx, domain.NewOfferEvent(domain.EventOfferAccepted, offer, caller, now),
	)
	return offer, nil
}

func (s *settlementService) RequestCancel(
	ctx context.Context, caller domain.Account, offerID uint64,
) (*domain.Offer, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	release := s.locker.acquire(offerID)
	defer release()

	now := s.clock.Now().Unix()

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			var offer *domain.Offer
			if err := s.repoManager.OfferRepository().UpdateOffer(
				ctx, offerID, func(o *domain.Offer) (*domain.Offer, error) {
					if err := o.RequestCancel(caller, now); err != nil {
						return nil, err
					}
					offer = o
					return o, nil
				},
			); err != nil {
				return nil, err
			}
			return offer, nil
		},
	)
	if err != nil {
		return nil, err
	}
	release()

	offer := res.(*domain.Offer)
	event := domain.NewOfferEvent(domain.EventCancelRequested, offer, caller, now)
	event.CooldownDeadline = offer.CancelDeadline(s.cancelCooldown)
	s.events.dispatch(ctx, event)
	return offer, nil
}

func (s *settlementService) FinalizeCancel(
	ctx context.Context, caller domain.Account, offerID uint64,
) (*domain.Offer, error) {
	return s.closeOffer(
		ctx, caller, offerID, domain.EventOfferCancelled,
		func(o *domain.Offer, now int64) error {
			return o.FinalizeCancel(caller, now, s.cancelCooldown)
		},
		(*domain.TraderProfile).RecordCancel,
	)
}

func (s *settlementService) ReclaimExpired(
	ctx context.Context, caller domain.Account, offerID uint64,
) (*domain.Offer, error) {
	return s.closeOffer(
		ctx, caller, offerID, domain.EventOfferExpired,
		func(o *domain.Offer, now int64) error {
			return o.Reclaim(caller, now)
		},
		(*domain.TraderProfile).RecordExpire,
	)
}

// closeOffer brings an offer to a terminal status other than Settled, records
// the outcome on the maker's profile and returns principal and stake to the
// maker.
func (s *settlementService) closeOffer(
	ctx context.Context,
	caller domain.Account,
	offerID uint64,
	eventType domain.EventType,
	transition func(o *domain.Offer, now int64) error,
	record func(p *domain.TraderProfile),
) (*domain.Offer, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	release := s.locker.acquire(offerID)
	defer release()

	now := s.clock.Now().Unix()
	plan := newTransferPlan()
	var profiles []domain.TraderProfile

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			var offer *domain.Offer
			if err := s.repoManager.OfferRepository().UpdateOffer(
				ctx, offerID, func(o *domain.Offer) (*domain.Offer, error) {
					if err := transition(o, now); err != nil {
						return nil, err
					}
					offer = o
					return o, nil
				},
			); err != nil {
				return nil, err
			}

			if err := s.repoManager.ProfileRepository().UpdateProfile(
				ctx, offer.Maker,
				func(p *domain.TraderProfile) (*domain.TraderProfile, error) {
					record(p)
					profiles = append(profiles, *p)
					return p, nil
				},
			); err != nil {
				return nil, err
			}

			nativeRefund, principal := offer.Refund()
			plan.out(domain.NativeAsset(), offer.Maker, nativeRefund).
				out(offer.MakerAsset, offer.Maker, principal)

			return offer, plan.execute(ctx, s.transfer)
		},
	)
	if err != nil {
		plan.rollback(ctx, s.transfer)
		return nil, err
	}
	release()

	offer := res.(*domain.Offer)
	s.cacheProfiles(ctx, profiles)
	s.logTransfers("offer closed", offer.ID, plan)
	s.events.dispatch(ctx, domain.NewOfferEvent(eventType, offer, caller, now))
	return offer, nil
}

// cacheProfiles replaces the cached profiles with the committed ones. The
// cache discards them if a read already cached a more recent version.
func (s *settlementService) cacheProfiles(
	ctx context.Context, profiles []domain.TraderProfile,
) {
	if s.cache == nil {
		return
	}
	for i := range profiles {
		s.cache.Set(ctx, &profiles[i])
	}
}

func (s *settlementService) logTransfers(
	msg string, offerID uint64, plan *transferPlan,
) {
	if !log.IsLevelEnabled(log.DebugLevel) {
		return
	}
	in, out := plan.totals()
	fields := log.Fields{"offer_id": offerID}
	for asset, amount := range in {
		fields["in_"+asset.String()] = mathutil.FromUnits(amount)
	}
	for asset, amount := range out {
		fields["out_"+asset.String()] = mathutil.FromUnits(amount)
	}
	log.WithFields(fields).Debug(msg)
}

func checkAcceptValue(offer *domain.Offer, value uint64) error {
	if !offer.TakerAsset.IsNative() {
		if value > 0 {
			return ErrUnexpectedNativeValue
		}
		return nil
	}
	if value < offer.TakerAmount {
		return fmt.Errorf(
			"%w: got %d, expected at least %d",
			ErrInsufficientValue, value, offer.TakerAmount,
		)
	}
	return nil
}

// sortedAccounts returns the accounts in a deterministic order, so that
// concurrent transactions lock the related records in the same order.
func sortedAccounts(accounts ...domain.Account) []domain.Account {
	sorted := append([]domain.Account{}, accounts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}
