// Package marketplace defines the canonical subscription data model and the
// client surface for the commercial marketplace acting as system of record.
//
// The marketplace owns subscription lifecycle state. This package exposes that
// state through two client implementations selected by deployment
// configuration:
//
//   - HTTPClient: the live fulfillment REST API client with bounded
//     exponential backoff on transient failures (HTTP 429 and 5xx).
//   - SimulationClient: an in-memory client for pre-production deployments
//     that synthesizes subscriptions and keeps a local operation ledger.
//
// The package also owns the operation-type vocabulary: ParseAction maps the
// marketplace's action strings onto the canonical OperationType enumeration.
// The mapping is strict and case-sensitive; unrecognized actions are an
// error, never a silent default.
//
// Usage:
//
//	client, err := marketplace.NewHTTPClient(cfg)
//	if err != nil {
//		return err
//	}
//	sub, err := client.ResolveToken(ctx, token)
package marketplace
