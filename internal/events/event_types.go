package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubscriptionCreated    EventType = "subscription_created"
	EventSubscriptionReconciled EventType = "subscription_reconciled"
	EventSubscriptionOrphaned   EventType = "subscription_orphaned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	SubscriptionID string      `json:"subscription_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(eventType EventType, subscriptionID string, payload interface{}) Event {
	return Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		SubscriptionID: subscriptionID,
		Timestamp:      time.Now().UTC(),
		Payload:        payload,
	}
}

// SubscriptionCreatedPayload payload.
type SubscriptionCreatedPayload struct {
	Email     string `json:"email"`
	ArtistURI string `json:"artist_uri"`
	Status    string `json:"status"`
}

// SubscriptionReconciledPayload payload.
type SubscriptionReconciledPayload struct {
	CustomerKey string `json:"customer_key"`
	Status      string `json:"status"`
	Email       string `json:"email"`
}

// SubscriptionOrphanedPayload describes a PayPal subscription with no directory record.
type SubscriptionOrphanedPayload struct {
	Email     string `json:"email"`
	ArtistURI string `json:"artist_uri"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}
