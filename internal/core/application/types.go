package application

import "github.com/tdex-network/tdex-otc/internal/core/domain"

// Webhook is the request to subscribe an http endpoint to events of the
// given type, or to any event with ports.AnyTopic.
type Webhook struct {
	Topic    string
	Endpoint string
	Secret   string
}

// WebhookInfo describes a subscribed webhook without revealing its secret.
type WebhookInfo struct {
	Id        string
	Topic     string
	Endpoint  string
	IsSecured bool
}

// OfferPage is a page of active offers along with the total count of active
// offers.
type OfferPage struct {
	Offers []*domain.Offer
	Total  uint64
}

// ProfileInfo is a trader profile along with its reliability score at the
// time of the request.
type ProfileInfo struct {
	Profile   domain.TraderProfile
	Score     uint64
	Breakdown domain.ScoreBreakdown
}

// BuildInfo contains info about the daemon build.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}
