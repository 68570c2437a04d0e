package events

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

// composeInput carries everything a constructor may need. Notification is
// nil for purchase events, which are composed directly from a resolved
// subscription during the landing flow.
type composeInput struct {
	subscription *marketplace.Subscription
	notification *marketplace.WebhookNotification
}

// constructor builds the concrete (type, data) pair for one
// (schema version, operation type) combination.
type constructor func(in composeInput) (Type, any)

// constructors is the explicit (version x operation type) table. A missing
// entry means the combination is unsupported under that schema and composing
// it is a deployment misconfiguration, surfaced as ErrUnsupportedCombination.
//
// The flattened schema predates the Reinstate and Renew events, so those two
// operations have no legacy constructor.
var constructors = map[SchemaVersion]map[marketplace.OperationType]constructor{
	SchemaVersionHierarchical: {
		marketplace.OperationActivate:           hierarchical(TypeSubscriptionPurchased),
		marketplace.OperationChangePlan:         hierarchical(TypeSubscriptionPlanChanged),
		marketplace.OperationChangeSeatQuantity: hierarchical(TypeSubscriptionSeatQuantityChanged),
		marketplace.OperationSuspend:            hierarchical(TypeSubscriptionSuspended),
		marketplace.OperationReinstate:          hierarchical(TypeSubscriptionReinstated),
		marketplace.OperationCancel:             hierarchical(TypeSubscriptionCancelled),
		marketplace.OperationRenew:              hierarchical(TypeSubscriptionRenewed),
	},
	SchemaVersionFlattened: {
		marketplace.OperationActivate:           flattened(TypeSubscriptionPurchased),
		marketplace.OperationChangePlan:         flattened(TypeSubscriptionPlanChanged),
		marketplace.OperationChangeSeatQuantity: flattened(TypeSubscriptionSeatQuantityChanged),
		marketplace.OperationSuspend:            flattened(TypeSubscriptionSuspended),
		marketplace.OperationCancel:             flattened(TypeSubscriptionCancelled),
	},
}

// Composer builds versioned events for lifecycle operations. The schema
// version is fixed at construction; two composers with different versions
// never coexist in one deployment.
type Composer struct {
	version SchemaVersion
	now     func() time.Time
	newID   func() uuid.UUID
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithClock overrides the timestamp source, used in tests.
func WithClock(now func() time.Time) ComposerOption {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides event ID generation, used in tests.
func WithIDGenerator(newID func() uuid.UUID) ComposerOption {
	return func(c *Composer) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// NewComposer creates a Composer for the given schema version.
// Unknown versions are rejected at construction so a misconfigured
// deployment fails at startup, not on the first webhook.
func NewComposer(version SchemaVersion, opts ...ComposerOption) (*Composer, error) {
	if _, ok := constructors[version]; !ok {
		return nil, fmt.Errorf("%w: schema version %q", ErrUnsupportedCombination, version)
	}

	c := &Composer{
		version: version,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Version returns the deployment-wide schema version.
func (c *Composer) Version() SchemaVersion {
	return c.version
}

// Compose builds the event for a verified operation. The notification may be
// nil only for OperationActivate. Every event gets a fresh random ID; the
// timestamp defaults to now unless the notification carries an explicit
// operation timestamp.
func (c *Composer) Compose(opType marketplace.OperationType, sub *marketplace.Subscription, notification *marketplace.WebhookNotification) (*Event, error) {
	if sub == nil {
		return nil, fmt.Errorf("%w: subscription is required", ErrInvalidComposeInput)
	}
	if notification == nil && opType != marketplace.OperationActivate {
		return nil, fmt.Errorf("%w: notification is required for operation %s", ErrInvalidComposeInput, opType)
	}

	ctor, ok := constructors[c.version][opType]
	if !ok {
		return nil, fmt.Errorf("%w: operation %s under schema %s", ErrUnsupportedCombination, opType, c.version)
	}

	eventType, data := ctor(composeInput{subscription: sub, notification: notification})

	event := &Event{
		ID:        c.newID(),
		Type:      eventType,
		Version:   c.version,
		Timestamp: c.now(),
		Data:      data,
	}
	if notification != nil {
		event.OperationID = notification.OperationID
		if !notification.Timestamp.IsZero() {
			event.Timestamp = notification.Timestamp.UTC()
		}
	}
	return event, nil
}

// ComposePurchase builds the purchase event emitted by the landing flow.
// There is no webhook notification at that point, only the resolved
// subscription.
func (c *Composer) ComposePurchase(sub *marketplace.Subscription) (*Event, error) {
	return c.Compose(marketplace.OperationActivate, sub, nil)
}

func hierarchical(t Type) constructor {
	return func(in composeInput) (Type, any) {
		data := HierarchicalData{Subscription: *in.subscription}
		if in.notification != nil {
			switch t {
			case TypeSubscriptionPlanChanged:
				data.NewPlanID = in.notification.PlanID
			case TypeSubscriptionSeatQuantityChanged:
				data.NewSeatQuantity = in.notification.SeatQuantity
			}
		}
		return t, data
	}
}

func flattened(t Type) constructor {
	return func(in composeInput) (Type, any) {
		sub := in.subscription
		data := FlattenedData{
			"subscriptionId":   sub.ID,
			"subscriptionName": sub.Name,
			"offerId":          sub.OfferID,
			"planId":           sub.PlanID,
			"status":           string(sub.Status),
			"isTest":           strconv.FormatBool(sub.IsTest),
			"isFreeTrial":      strconv.FormatBool(sub.IsFreeTrial),
			"beneficiaryEmail": sub.Beneficiary.Email,
			"purchaserEmail":   sub.Purchaser.Email,
		}
		if sub.SeatQuantity != nil {
			data["seatQuantity"] = strconv.FormatInt(*sub.SeatQuantity, 10)
		}
		if in.notification != nil {
			switch t {
			case TypeSubscriptionPlanChanged:
				data["newPlanId"] = in.notification.PlanID
			case TypeSubscriptionSeatQuantityChanged:
				if in.notification.SeatQuantity != nil {
					data["newSeatQuantity"] = strconv.FormatInt(*in.notification.SeatQuantity, 10)
				}
			}
		}
		return t, data
	}
}
