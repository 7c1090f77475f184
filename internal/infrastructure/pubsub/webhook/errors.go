package webhookpubsub

import "errors"

var (
	// ErrNullStore specifies that a SubscriptionStore is required.
	ErrNullStore = errors.New("subscription store must not be null")
	// ErrMissingTopic ...
	ErrMissingTopic = errors.New("missing topic")
	// ErrInvalidEndpoint is returned if the webhook endpoint is not a valid
	// URI.
	ErrInvalidEndpoint = errors.New("webhook endpoint must be a valid URI")
	// ErrSubscriptionNotFound ...
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
