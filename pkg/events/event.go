package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

// Type names a concrete lifecycle event emitted to downstream integrations.
type Type string

const (
	TypeSubscriptionPurchased           Type = "SubscriptionPurchased"
	TypeSubscriptionPlanChanged         Type = "SubscriptionPlanChanged"
	TypeSubscriptionSeatQuantityChanged Type = "SubscriptionSeatQuantityChanged"
	TypeSubscriptionSuspended           Type = "SubscriptionSuspended"
	TypeSubscriptionReinstated          Type = "SubscriptionReinstated"
	TypeSubscriptionCancelled           Type = "SubscriptionCancelled"
	TypeSubscriptionRenewed             Type = "SubscriptionRenewed"
)

// SchemaVersion selects one of the two supported wire shapes. It is a
// deployment-wide setting chosen once at startup, never per event.
type SchemaVersion string

const (
	// SchemaVersionHierarchical embeds the subscription as a nested object
	// graph. This is the current schema.
	SchemaVersionHierarchical SchemaVersion = "v2"
	// SchemaVersionFlattened projects the subscription into a flat string
	// map. Kept for integrations built against the legacy shape.
	SchemaVersionFlattened SchemaVersion = "v1"
)

// Event is an immutable, versioned description of a completed lifecycle
// operation. Once composed it is never mutated; publication failures re-run
// composition rather than patching a previously built event.
type Event struct {
	ID          uuid.UUID     `json:"eventId"`
	Type        Type          `json:"eventType"`
	Version     SchemaVersion `json:"eventVersion"`
	OperationID string        `json:"operationId,omitempty"`
	Timestamp   time.Time     `json:"operationDateTimeUtc"`
	Data        any           `json:"data"`
}

// HierarchicalData is the nested payload carried by hierarchical-schema
// events.
type HierarchicalData struct {
	Subscription    marketplace.Subscription `json:"subscription"`
	NewPlanID       string                   `json:"newPlanId,omitempty"`
	NewSeatQuantity *int64                   `json:"newSeatQuantity,omitempty"`
}

// FlattenedData is the legacy key/value projection of a subscription.
// All values are strings; absent optional fields are omitted entirely.
type FlattenedData map[string]string
