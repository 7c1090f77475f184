package application

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
)

// eventDispatcher forwards committed events to all the configured
// publishers. Failures are logged and never returned, the engine behaviour
// does not depend on anyone consuming events. Publishing is not aborted if
// the context of the originating request is cancelled.
type eventDispatcher struct {
	publishers []ports.EventPublisher
}

func newEventDispatcher(publishers ...ports.EventPublisher) *eventDispatcher {
	pubs := make([]ports.EventPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			pubs = append(pubs, p)
		}
	}
	return &eventDispatcher{pubs}
}

func (d *eventDispatcher) dispatch(ctx context.Context, events ...*domain.Event) {
	ctx = context.WithoutCancel(ctx)
	for _, event := range events {
		log.WithFields(log.Fields{
			"type":     event.Type,
			"offer_id": event.OfferID,
			"account":  event.Account,
		}).Debug("event emitted")

		for _, pub := range d.publishers {
			if err := pub.PublishEvent(ctx, event); err != nil {
				log.WithError(err).WithField("event", event.ID).Warn(
					"failed to publish event",
				)
			}
		}
	}
}
