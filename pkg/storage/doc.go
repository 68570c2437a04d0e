// Package storage persists the bridge's local knowledge of subscriptions.
//
// One SubscriptionStore interface, three implementations: Postgres (pgx with
// goose-managed schema), MongoDB, and in-memory for tests and simulation
// deployments. The subscription ID is the upsert key everywhere; records are
// never hard-deleted since Cancelled is a terminal status, not a removal.
package storage
