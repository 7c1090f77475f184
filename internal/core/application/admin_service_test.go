package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-otc/internal/core/application"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
	webhookpubsub "github.com/tdex-network/tdex-otc/internal/infrastructure/pubsub/webhook"
)

func TestUpdateParams(t *testing.T) {
	env := newTestEnv(t, nil)

	params, err := env.admin.UpdateMinStake(env.ctx, admin, 42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), params.MinStake)

	params, err = env.admin.UpdateFeeBasisPoints(env.ctx, admin, domain.MaxFeeBasisPoints)
	require.NoError(t, err)
	require.Equal(t, uint64(domain.MaxFeeBasisPoints), params.FeeBasisPoints)

	params, err = env.admin.UpdateFeeRecipient(env.ctx, admin, "vault")
	require.NoError(t, err)
	require.Equal(t, domain.Account("vault"), params.FeeRecipient)

	params, err = env.admin.TransferAdmin(env.ctx, admin, "new-admin")
	require.NoError(t, err)
	require.Equal(t, domain.Account("new-admin"), params.Admin)

	// The previous admin lost its role.
	_, err = env.admin.UpdateMinStake(env.ctx, admin, 1)
	require.ErrorIs(t, err, domain.ErrParamsNotAdmin)

	stored, err := env.query.GetParams(env.ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Params{
		Admin:          "new-admin",
		MinStake:       42,
		FeeBasisPoints: domain.MaxFeeBasisPoints,
		FeeRecipient:   "vault",
	}, *stored)

	require.Equal(t, []domain.EventType{
		domain.EventMinStakeUpdated,
		domain.EventFeeUpdated,
		domain.EventFeeRecipientUpdated,
		domain.EventAdminUpdated,
	}, env.publisher.eventTypes())
	events := env.publisher.events()
	require.Equal(t, uint64(42), events[0].Value)
	require.Equal(t, domain.Account("new-admin"), events[3].Counterpart)
}

func TestFailingUpdateParams(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name        string
		update      func() error
		expectedErr error
	}{
		{
			name: "min stake by non admin",
			update: func() error {
				_, err := env.admin.UpdateMinStake(env.ctx, maker, 1)
				return err
			},
			expectedErr: domain.ErrParamsNotAdmin,
		},
		{
			name: "fee above cap",
			update: func() error {
				_, err := env.admin.UpdateFeeBasisPoints(
					env.ctx, admin, domain.MaxFeeBasisPoints+1,
				)
				return err
			},
			expectedErr: domain.ErrParamsFeeTooHigh,
		},
		{
			name: "empty fee recipient",
			update: func() error {
				_, err := env.admin.UpdateFeeRecipient(env.ctx, admin, "")
				return err
			},
			expectedErr: domain.ErrParamsInvalidFeeRecipient,
		},
		{
			name: "empty admin",
			update: func() error {
				_, err := env.admin.TransferAdmin(env.ctx, admin, "")
				return err
			},
			expectedErr: domain.ErrParamsInvalidAdmin,
		},
		{
			name: "invalid caller",
			update: func() error {
				_, err := env.admin.UpdateFeeBasisPoints(env.ctx, "", 1)
				return err
			},
			expectedErr: domain.ErrAccountInvalid,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.update(), tt.expectedErr)
		})
	}

	params, err := env.query.GetParams(env.ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Params{
		Admin:          admin,
		MinStake:       minStake,
		FeeBasisPoints: feeBasisPoints,
		FeeRecipient:   treasury,
	}, *params)
	require.Empty(t, env.publisher.events())
}

func TestWithdrawFees(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.admin.WithdrawFees(env.ctx, admin)
	require.ErrorIs(t, err, domain.ErrParamsNoAccruedFees)

	_, err = env.admin.UpdateFeeBasisPoints(env.ctx, admin, 100)
	require.NoError(t, err)

	// 1% of 1000 native paid by the taker accrues as platform fee.
	terms := defaultTerms()
	terms.MakerAsset = tokenA
	terms.TakerAsset = native
	terms.TakerAmount = 1000
	id := env.createOffer(t, terms, minStake)
	_, err = env.settlement.AcceptOffer(env.ctx, taker, id, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(initialFunds+990), env.ledger.Balance(maker, native))
	require.Equal(t, uint64(10), env.ledger.EscrowBalance(native))

	_, err = env.admin.WithdrawFees(env.ctx, maker)
	require.ErrorIs(t, err, domain.ErrParamsNotAdmin)

	// Fees go to the recipient at the time of the withdrawal.
	_, err = env.admin.UpdateFeeRecipient(env.ctx, admin, "vault")
	require.NoError(t, err)

	amount, err := env.admin.WithdrawFees(env.ctx, admin)
	require.NoError(t, err)
	require.Equal(t, uint64(10), amount)
	require.Equal(t, uint64(10), env.ledger.Balance("vault", native))
	require.Zero(t, env.ledger.Balance(treasury, native))
	require.Zero(t, env.ledger.EscrowBalance(native))

	params, err := env.query.GetParams(env.ctx)
	require.NoError(t, err)
	require.Zero(t, params.AccruedNativeFees)

	events := env.publisher.events()
	last := events[len(events)-1]
	require.Equal(t, domain.EventFeesWithdrawn, last.Type)
	require.Equal(t, uint64(10), last.Value)
	require.Equal(t, domain.Account("vault"), last.Counterpart)

	_, err = env.admin.WithdrawFees(env.ctx, admin)
	require.ErrorIs(t, err, domain.ErrParamsNoAccruedFees)
}

func TestWithdrawFeesTransferFailure(t *testing.T) {
	env := newTestEnv(t, nil)

	terms := defaultTerms()
	terms.TakerAsset = native
	terms.TakerAmount = 10_000
	id := env.createOffer(t, terms, minStake)
	_, err := env.settlement.AcceptOffer(env.ctx, taker, id, 10_000)
	require.NoError(t, err)

	env.transfer.failOutgoingTo(treasury)
	_, err = env.admin.WithdrawFees(env.ctx, admin)
	require.ErrorIs(t, err, application.ErrTransferFailed)

	params, err := env.query.GetParams(env.ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(30), params.AccruedNativeFees)
	require.Equal(t, uint64(30), env.ledger.EscrowBalance(native))
}

func TestWebhooks(t *testing.T) {
	t.Run("without pubsub", func(t *testing.T) {
		env := newTestEnv(t, nil)

		_, err := env.admin.AddWebhook(env.ctx, admin, application.Webhook{
			Topic:    domain.EventOfferCreated.String(),
			Endpoint: "http://127.0.0.1:8080/hook",
		})
		require.ErrorIs(t, err, application.ErrWebhookManagerNotInitialized)
	})

	t.Run("with pubsub", func(t *testing.T) {
		webhooks, err := webhookpubsub.NewService(webhookpubsub.NewInMemoryStore(), 0)
		require.NoError(t, err)
		env := newTestEnv(t, webhooks)

		hook := application.Webhook{
			Topic:    domain.EventOfferAccepted.String(),
			Endpoint: "http://127.0.0.1:8080/accepted",
			Secret:   "secret",
		}

		_, err = env.admin.AddWebhook(env.ctx, maker, hook)
		require.ErrorIs(t, err, domain.ErrParamsNotAdmin)

		_, err = env.admin.AddWebhook(env.ctx, admin, application.Webhook{
			Topic:    "UNKNOWN",
			Endpoint: hook.Endpoint,
		})
		require.ErrorIs(t, err, application.ErrWebhookInvalid)

		_, err = env.admin.AddWebhook(env.ctx, admin, application.Webhook{
			Topic:    hook.Topic,
			Endpoint: "not an url",
		})
		require.ErrorIs(t, err, application.ErrWebhookInvalid)

		id, err := env.admin.AddWebhook(env.ctx, admin, hook)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		anyID, err := env.admin.AddWebhook(env.ctx, admin, application.Webhook{
			Topic:    ports.AnyTopic,
			Endpoint: "http://127.0.0.1:8080/all",
		})
		require.NoError(t, err)

		hooks, err := env.admin.ListWebhooks(env.ctx, admin, ports.UnspecifiedTopic)
		require.NoError(t, err)
		require.Len(t, hooks, 2)

		hooks, err = env.admin.ListWebhooks(env.ctx, admin, hook.Topic)
		require.NoError(t, err)
		require.Len(t, hooks, 2)
		require.Equal(t, application.WebhookInfo{
			Id:        id,
			Topic:     hook.Topic,
			Endpoint:  hook.Endpoint,
			IsSecured: true,
		}, hooks[0])
		require.Equal(t, anyID, hooks[1].Id)
		require.False(t, hooks[1].IsSecured)

		err = env.admin.RemoveWebhook(env.ctx, admin, "unknown")
		require.ErrorIs(t, err, application.ErrWebhookNotFound)

		require.NoError(t, env.admin.RemoveWebhook(env.ctx, admin, id))
		hooks, err = env.admin.ListWebhooks(env.ctx, admin, ports.UnspecifiedTopic)
		require.NoError(t, err)
		require.Len(t, hooks, 1)
	})
}

func TestNewServicesMissingCollaborators(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := application.NewAdminService(nil, env.transfer, env.clock, nil)
	require.Error(t, err)
	_, err = application.NewSettlementService(
		env.repo, nil, env.clock, nil, cancelCooldown, minOfferLifetime,
	)
	require.Error(t, err)
	_, err = application.NewSettlementService(
		env.repo, env.transfer, env.clock, nil, -time.Second, minOfferLifetime,
	)
	require.Error(t, err)
	_, err = application.NewQueryService(env.repo, nil, nil, cancelCooldown)
	require.Error(t, err)
}
