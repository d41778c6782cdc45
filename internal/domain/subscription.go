package domain

import "time"

// SubscriptionStatus is the PayPal lifecycle status of a subscription.
type SubscriptionStatus string

const (
	SubscriptionApprovalPending SubscriptionStatus = "APPROVAL_PENDING"
	SubscriptionApproved        SubscriptionStatus = "APPROVED"
	SubscriptionActive          SubscriptionStatus = "ACTIVE"
	SubscriptionSuspended       SubscriptionStatus = "SUSPENDED"
	SubscriptionCancelled       SubscriptionStatus = "CANCELLED"
	SubscriptionExpired         SubscriptionStatus = "EXPIRED"
)

// Link is a HATEOAS link returned by PayPal.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

// SubscriberName is the payer name attached to a subscription.
type SubscriberName struct {
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
}

// Subscriber identifies the payer of a subscription.
type Subscriber struct {
	EmailAddress string         `json:"email_address"`
	Name         SubscriberName `json:"name"`
}

// Subscription is the provider-owned subscription resource. It is read only.
type Subscription struct {
	ID         string             `json:"id"`
	Status     SubscriptionStatus `json:"status"`
	PlanID     string             `json:"plan_id,omitempty"`
	CustomID   string             `json:"custom_id,omitempty"`
	StartTime  string             `json:"start_time,omitempty"`
	CreateTime string             `json:"create_time,omitempty"`
	Subscriber Subscriber         `json:"subscriber"`
	Links      []Link             `json:"links"`
}

// EffectiveStartTime prefers the billing start over the creation time.
func (s Subscription) EffectiveStartTime() string {
	if s.StartTime != "" {
		return s.StartTime
	}
	return s.CreateTime
}

// ApprovalLink returns the href of the "approve" link, if PayPal sent one.
func ApprovalLink(links []Link) (string, bool) {
	for _, link := range links {
		if link.Rel == "approve" && link.Href != "" {
			return link.Href, true
		}
	}
	return "", false
}

// OrphanedSubscription records a PayPal subscription that has no directory
// customer because the directory write failed after PayPal accepted it.
type OrphanedSubscription struct {
	ID             string
	SubscriptionID string
	Email          string
	ArtistURI      string
	Status         string
	Reason         string
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}
