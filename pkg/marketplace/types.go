package marketplace

import "time"

// SubscriptionStatus represents the marketplace-side state of a subscription.
type SubscriptionStatus string

const (
	StatusUnknown             SubscriptionStatus = "Unknown"
	StatusPendingConfirmation SubscriptionStatus = "PendingConfirmation"
	StatusPendingActivation   SubscriptionStatus = "PendingActivation"
	StatusActive              SubscriptionStatus = "Active"
	StatusSuspended           SubscriptionStatus = "Suspended"
	StatusCancelled           SubscriptionStatus = "Cancelled"
)

// TermUnit represents the billing term length of a subscription.
type TermUnit string

const (
	TermUnitMonthly TermUnit = "P1M"
	TermUnitYearly  TermUnit = "P1Y"
)

// Term describes the current billing period of a subscription.
type Term struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Unit      TermUnit  `json:"termUnit"`
}

// UserInfo identifies the beneficiary or purchaser of a subscription
// as reported by the marketplace.
type UserInfo struct {
	UserID          string `json:"userId"`
	Email           string `json:"emailId"`
	ObjectID        string `json:"objectId"`
	DirectoryTenant string `json:"tenantId"`
}

// Subscription is the canonical subscription record. The marketplace is the
// system of record: Status, PlanID and SeatQuantity change only through
// webhook-confirmed operations (or through the simulation client in
// pre-production deployments).
type Subscription struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	OfferID      string             `json:"offerId"`
	PlanID       string             `json:"planId"`
	SeatQuantity *int64             `json:"quantity,omitempty"`
	Status       SubscriptionStatus `json:"saasSubscriptionStatus"`
	IsTest       bool               `json:"isTest"`
	IsFreeTrial  bool               `json:"isFreeTrial"`
	Term         Term               `json:"term"`
	Beneficiary  UserInfo           `json:"beneficiary"`
	Purchaser    UserInfo           `json:"purchaser"`
	CreatedAt    time.Time          `json:"created"`
	UpdatedAt    time.Time          `json:"lastModified"`
}

// IsPendingActivation reports whether a subscription has never completed the
// purchase journey. The landing flow branches on this: pending subscriptions
// go through purchase confirmation, everything else goes to configuration.
func (s *Subscription) IsPendingActivation() bool {
	return s.Status == StatusPendingActivation
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

func (s *Subscription) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// SubscriptionOperation is the marketplace's own record of an async
// lifecycle operation. It is fetched on demand to verify a webhook
// notification and never persisted by this module.
type SubscriptionOperation struct {
	SubscriptionID string        `json:"subscriptionId"`
	OperationID    string        `json:"id"`
	Type           OperationType `json:"-"`
	Action         string        `json:"action"`
	PlanID         string        `json:"planId,omitempty"`
	SeatQuantity   *int64        `json:"quantity,omitempty"`
	Timestamp      time.Time     `json:"timeStamp"`
}

// WebhookNotification is the untrusted payload the marketplace POSTs when a
// lifecycle operation completes. Nothing in it may be acted upon until it has
// been verified against a freshly fetched SubscriptionOperation.
type WebhookNotification struct {
	OperationID    string    `json:"id"`
	ActivityID     string    `json:"activityId"`
	SubscriptionID string    `json:"subscriptionId"`
	OfferID        string    `json:"offerId"`
	PublisherID    string    `json:"publisherId"`
	PlanID         string    `json:"planId"`
	SeatQuantity   *int64    `json:"quantity,omitempty"`
	Timestamp      time.Time `json:"timeStamp"`
	Action         string    `json:"action"`
	Status         string    `json:"status"`
}
