package webhookpubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
	"github.com/tdex-network/tdex-otc/pkg/circuitbreaker"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

const requestTimeout = 15 * time.Second

type service struct {
	store      SubscriptionStore
	httpClient *client
	cb         *gobreaker.CircuitBreaker
	limiter    ratelimit.Limiter
}

// NewService returns a webhook pubsub that POSTs every published event, as
// json, to the endpoints subscribed for its type. At most requestsPerSecond
// requests are sent, unlimited if zero.
func NewService(
	store SubscriptionStore, requestsPerSecond int,
) (ports.WebhookPubSub, error) {
	if store == nil {
		return nil, ErrNullStore
	}

	limiter := ratelimit.NewUnlimited()
	if requestsPerSecond > 0 {
		limiter = ratelimit.New(requestsPerSecond)
	}

	return &service{
		store:      store,
		httpClient: newHTTPClient(requestTimeout),
		cb:         circuitbreaker.NewCircuitBreaker("webhooks"),
		limiter:    limiter,
	}, nil
}

func (ws *service) Subscribe(topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	if err := ws.store.Add(*sub); err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (ws *service) Unsubscribe(id string) error {
	return ws.store.Remove(id)
}

func (ws *service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	return ws.listSubscriptionsForTopic(topic).toPortable()
}

func (ws *service) PublishEvent(ctx context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	subs := ws.listSubscriptionsForTopic(event.Type.String())

	eg, ctx := errgroup.WithContext(ctx)
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return ws.doRequest(ctx, sub, payload) })
	}
	return eg.Wait()
}

func (ws *service) Close() {
	//nolint
	ws.store.Close()
}

// listSubscriptionsForTopic returns the subscriptions for the given topic
// followed by those for any topic. UnspecifiedTopic returns them all.
func (ws *service) listSubscriptionsForTopic(topic string) subscriptions {
	all, err := ws.store.List()
	if err != nil {
		return nil
	}
	if topic == ports.UnspecifiedTopic {
		return all
	}

	subs := make(subscriptions, 0, len(all))
	for _, sub := range all {
		if sub.Event == topic {
			subs = append(subs, sub)
		}
	}
	if topic != ports.AnyTopic {
		for _, sub := range all {
			if sub.Event == ports.AnyTopic {
				subs = append(subs, sub)
			}
		}
	}
	return subs
}

func (ws *service) doRequest(
	ctx context.Context, sub Subscription, payload []byte,
) error {
	ws.limiter.Take()

	_, err := ws.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if sub.IsSecured() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				IssuedAt: time.Now().Unix(),
				Subject:  sub.ID,
			})
			secret := []byte(sub.Secret)
			tokenString, _ := token.SignedString(secret)
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := ws.httpClient.post(ctx, sub.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("webhook %s replied %d: %s", sub.ID, status, resp)
		}
		return nil, nil
	})

	return err
}
