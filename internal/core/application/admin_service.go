package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
)

var (
	// ErrWebhookInvalid is returned if a webhook has an unknown topic or a
	// malformed endpoint.
	ErrWebhookInvalid = errors.New("webhook must have a known event type and a valid endpoint")
	// ErrWebhookNotFound ...
	ErrWebhookNotFound = errors.New("webhook not found")
)

// AdminService exposes the administrative surface of the engine. Every
// operation is restricted to the administrator account stored in Params.
type AdminService interface {
	UpdateMinStake(
		ctx context.Context, caller domain.Account, minStake uint64,
	) (*domain.Params, error)
	UpdateFeeBasisPoints(
		ctx context.Context, caller domain.Account, bps uint64,
	) (*domain.Params, error)
	UpdateFeeRecipient(
		ctx context.Context, caller, recipient domain.Account,
	) (*domain.Params, error)
	TransferAdmin(
		ctx context.Context, caller, admin domain.Account,
	) (*domain.Params, error)
	// WithdrawFees transfers all the accrued native fees to the fee
	// recipient and returns the withdrawn amount.
	WithdrawFees(ctx context.Context, caller domain.Account) (uint64, error)

	AddWebhook(
		ctx context.Context, caller domain.Account, hook Webhook,
	) (string, error)
	RemoveWebhook(ctx context.Context, caller domain.Account, id string) error
	ListWebhooks(
		ctx context.Context, caller domain.Account, topic string,
	) ([]WebhookInfo, error)
}

type adminService struct {
	repoManager ports.RepoManager
	transfer    ports.AssetTransfer
	clock       ports.Clock
	webhooks    ports.WebhookPubSub
	events      *eventDispatcher
}

// NewAdminService returns an AdminService. The webhook pubsub and the
// publishers are optional.
func NewAdminService(
	repoManager ports.RepoManager,
	transfer ports.AssetTransfer,
	clock ports.Clock,
	webhooks ports.WebhookPubSub,
	publishers ...ports.EventPublisher,
) (AdminService, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if transfer == nil {
		return nil, fmt.Errorf("missing asset transfer")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}

	return &adminService{
		repoManager: repoManager,
		transfer:    transfer,
		clock:       clock,
		webhooks:    webhooks,
		events:      newEventDispatcher(publishers...),
	}, nil
}

func (s *adminService) UpdateMinStake(
	ctx context.Context, caller domain.Account, minStake uint64,
) (*domain.Params, error) {
	return s.updateParams(
		ctx, caller, domain.EventMinStakeUpdated,
		func(p *domain.Params) (*domain.Event, error) {
			if err := p.UpdateMinStake(caller, minStake); err != nil {
				return nil, err
			}
			event := domain.NewEvent(
				domain.EventMinStakeUpdated, caller, s.clock.Now().Unix(),
			)
			event.Value = minStake
			return event, nil
		},
	)
}

func (s *adminService) UpdateFeeBasisPoints(
	ctx context.Context, caller domain.Account, bps uint64,
) (*domain.Params, error) {
	return s.updateParams(
		ctx, caller, domain.EventFeeUpdated,
		func(p *domain.Params) (*domain.Event, error) {
			if err := p.UpdateFeeBasisPoints(caller, bps); err != nil {
				return nil, err
			}
			event := domain.NewEvent(
				domain.EventFeeUpdated, caller, s.clock.Now().Unix(),
			)
			event.Value = bps
			return event, nil
		},
	)
}

func (s *adminService) UpdateFeeRecipient(
	ctx context.Context, caller, recipient domain.Account,
) (*domain.Params, error) {
	return s.updateParams(
		ctx, caller, domain.EventFeeRecipientUpdated,
		func(p *domain.Params) (*domain.Event, error) {
			if err := p.UpdateFeeRecipient(caller, recipient); err != nil {
				return nil, err
			}
			event := domain.NewEvent(
				domain.EventFeeRecipientUpdated, caller, s.clock.Now().Unix(),
			)
			event.Counterpart = recipient
			return event, nil
		},
	)
}

func (s *adminService) TransferAdmin(
	ctx context.Context, caller, admin domain.Account,
) (*domain.Params, error) {
	return s.updateParams(
		ctx, caller, domain.EventAdminUpdated,
		func(p *domain.Params) (*domain.Event, error) {
			if err := p.TransferAdmin(caller, admin); err != nil {
				return nil, err
			}
			event := domain.NewEvent(
				domain.EventAdminUpdated, caller, s.clock.Now().Unix(),
			)
			event.Counterpart = admin
			return event, nil
		},
	)
}

func (s *adminService) WithdrawFees(
	ctx context.Context, caller domain.Account,
) (uint64, error) {
	if err := caller.Validate(); err != nil {
		return 0, err
	}

	plan := newTransferPlan()
	var event *domain.Event

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			var amount uint64
			var recipient domain.Account
			if err := s.repoManager.ParamsRepository().UpdateParams(
				ctx, func(p *domain.Params) (*domain.Params, error) {
					withdrawn, err := p.WithdrawFees(caller)
					if err != nil {
						return nil, err
					}
					amount, recipient = withdrawn, p.FeeRecipient
					return p, nil
				},
			); err != nil {
				return nil, err
			}

			event = domain.NewEvent(
				domain.EventFeesWithdrawn, caller, s.clock.Now().Unix(),
			)
			event.Counterpart = recipient
			event.Value = amount

			plan.out(domain.NativeAsset(), recipient, amount)
			return amount, plan.execute(ctx, s.transfer)
		},
	)
	if err != nil {
		plan.rollback(ctx, s.transfer)
		return 0, err
	}

	s.events.dispatch(ctx, event)
	return res.(uint64), nil
}

func (s *adminService) AddWebhook(
	ctx context.Context, caller domain.Account, hook Webhook,
) (string, error) {
	if err := s.checkWebhookManager(ctx, caller); err != nil {
		return "", err
	}
	if err := hook.validate(); err != nil {
		return "", err
	}
	return s.webhooks.Subscribe(hook.Topic, hook.Endpoint, hook.Secret)
}

func (s *adminService) RemoveWebhook(
	ctx context.Context, caller domain.Account, id string,
) error {
	if err := s.checkWebhookManager(ctx, caller); err != nil {
		return err
	}
	found := false
	for _, sub := range s.webhooks.ListSubscriptionsForTopic(
		ports.UnspecifiedTopic,
	) {
		if sub.Id() == id {
			found = true
			break
		}
	}
	if !found {
		return ErrWebhookNotFound
	}
	return s.webhooks.Unsubscribe(id)
}

func (s *adminService) ListWebhooks(
	ctx context.Context, caller domain.Account, topic string,
) ([]WebhookInfo, error) {
	if err := s.checkWebhookManager(ctx, caller); err != nil {
		return nil, err
	}
	subs := s.webhooks.ListSubscriptionsForTopic(topic)
	hooks := make([]WebhookInfo, 0, len(subs))
	for _, sub := range subs {
		hooks = append(hooks, WebhookInfo{
			Id:        sub.Id(),
			Topic:     sub.Topic(),
			Endpoint:  sub.NotifyAt(),
			IsSecured: sub.IsSecured(),
		})
	}
	return hooks, nil
}

func (s *adminService) updateParams(
	ctx context.Context,
	caller domain.Account,
	eventType domain.EventType,
	updateFn func(p *domain.Params) (*domain.Event, error),
) (*domain.Params, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	var event *domain.Event
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			var params *domain.Params
			if err := s.repoManager.ParamsRepository().UpdateParams(
				ctx, func(p *domain.Params) (*domain.Params, error) {
					e, err := updateFn(p)
					if err != nil {
						return nil, err
					}
					event, params = e, p
					return p, nil
				},
			); err != nil {
				return nil, err
			}
			return params, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", eventType, err)
	}

	s.events.dispatch(ctx, event)
	return res.(*domain.Params), nil
}

func (s *adminService) checkWebhookManager(
	ctx context.Context, caller domain.Account,
) error {
	if s.webhooks == nil {
		return ErrWebhookManagerNotInitialized
	}
	params, err := s.repoManager.ParamsRepository().GetParams(ctx)
	if err != nil {
		return err
	}
	if caller.IsZero() || caller != params.Admin {
		return domain.ErrParamsNotAdmin
	}
	return nil
}

func (h Webhook) validate() error {
	if h.Topic != ports.AnyTopic && !domain.EventType(h.Topic).IsValid() {
		return ErrWebhookInvalid
	}
	if _, err := url.ParseRequestURI(h.Endpoint); err != nil {
		return ErrWebhookInvalid
	}
	return nil
}
