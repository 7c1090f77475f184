package domain

import (
	"github.com/google/uuid"
)

// EventType identifies the transition an Event reports.
type EventType string

const (
	EventOfferCreated        EventType = "OFFER_CREATED"
	EventOfferAccepted       EventType = "OFFER_ACCEPTED"
	EventCancelRequested     EventType = "CANCEL_REQUESTED"
	EventOfferCancelled      EventType = "OFFER_CANCELLED"
	EventOfferExpired        EventType = "OFFER_EXPIRED"
	EventMinStakeUpdated     EventType = "MIN_STAKE_UPDATED"
	EventFeeUpdated          EventType = "FEE_UPDATED"
	EventFeeRecipientUpdated EventType = "FEE_RECIPIENT_UPDATED"
	EventFeesWithdrawn       EventType = "FEES_WITHDRAWN"
	EventAdminUpdated        EventType = "ADMIN_UPDATED"
)

// EventTypes lists every event type, in the order they are documented.
var EventTypes = []EventType{
	EventOfferCreated,
	EventOfferAccepted,
	EventCancelRequested,
	EventOfferCancelled,
	EventOfferExpired,
	EventMinStakeUpdated,
	EventFeeUpdated,
	EventFeeRecipientUpdated,
	EventFeesWithdrawn,
	EventAdminUpdated,
}

// IsValid returns whether t is one of the known event types.
func (t EventType) IsValid() bool {
	for _, tt := range EventTypes {
		if t == tt {
			return true
		}
	}
	return false
}

func (t EventType) String() string {
	return string(t)
}

// Event is the structured record emitted after every successful transition.
// Fields not affected by the transition are left to their zero value.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	OfferID     uint64    `json:"offer_id,omitempty"`
	Account     Account   `json:"account"`
	Counterpart Account   `json:"counterpart,omitempty"`
	MakerAsset  *Asset    `json:"maker_asset,omitempty"`
	MakerAmount uint64    `json:"maker_amount,omitempty"`
	TakerAsset  *Asset    `json:"taker_asset,omitempty"`
	TakerAmount uint64    `json:"taker_amount,omitempty"`
	MakerFee    uint64    `json:"maker_fee,omitempty"`
	TakerFee    uint64    `json:"taker_fee,omitempty"`
	Stake       uint64    `json:"stake,omitempty"`
	Expiry      int64     `json:"expiry,omitempty"`
	// CooldownDeadline is the time at which a requested cancellation can be
	// finalized.
	CooldownDeadline int64 `json:"cooldown_deadline,omitempty"`
	// Value carries the new value of an updated parameter or the amount of
	// withdrawn fees.
	Value     uint64 `json:"value,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewEvent returns an event of the given type with a fresh id.
func NewEvent(eventType EventType, account Account, now int64) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Account:   account,
		Timestamp: now,
	}
}

// NewOfferEvent returns an event reporting a transition of the given offer.
func NewOfferEvent(
	eventType EventType, offer *Offer, account Account, now int64,
) *Event {
	e := NewEvent(eventType, account, now)
	makerAsset, takerAsset := offer.MakerAsset, offer.TakerAsset
	e.OfferID = offer.ID
	e.MakerAsset = &makerAsset
	e.MakerAmount = offer.MakerAmount
	e.TakerAsset = &takerAsset
	e.TakerAmount = offer.TakerAmount
	e.Stake = offer.Stake
	e.Expiry = offer.Expiry
	if account == offer.Maker {
		e.Counterpart = offer.Taker
	} else {
		e.Counterpart = offer.Maker
	}
	if offer.IsSettled() {
		e.MakerFee = offer.MakerFee
		e.TakerFee = offer.TakerFee
	}
	return e
}
