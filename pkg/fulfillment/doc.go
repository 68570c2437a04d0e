// Package fulfillment is the subscription lifecycle orchestrator: it
// reconciles marketplace notifications and purchase tokens against the
// authoritative subscription record and republishes normalized lifecycle
// events.
//
// Two entry points exist. Landing handles the buyer's arrival after
// purchase: it resolves the marketplace token, branches on whether the
// subscription has ever been seen before (PendingActivation status), and
// decides the redirect. HandleNotification handles the asynchronous webhook
// path: it looks up the subscription from local knowledge, verifies the
// notification against the marketplace's own operation ledger (a webhook
// POST alone proves nothing), applies the state mutation, and publishes the
// corresponding event.
//
// All collaborator failures are logged with full context and propagated.
// The flows never convert an error into a successful acknowledgement: the
// marketplace retries on non-2xx, and a false success would lose the
// operation.
//
// Simulation mode (WithSimulationMode) synthesizes subscriptions instead of
// resolving tokens and bypasses ledger verification. It exists for
// pre-production testing only and is never a fallback path.
package fulfillment
