package ports

import (
	"context"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

const AnyTopic = "*"
const UnspecifiedTopic = ""

// EventPublisher forwards the events emitted by the engine to off-engine
// consumers.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *domain.Event) error
	Close()
}

type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// WebhookPubSub is an EventPublisher that notifies events to subscribed
// http endpoints.
type WebhookPubSub interface {
	EventPublisher
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id.
	Unsubscribe(id string) error
	// ListSubscriptionsForTopic returns the info of all clients subscribed for
	// a certain topic. UnspecifiedTopic returns all subscriptions.
	ListSubscriptionsForTopic(topic string) []Subscription
}
