// Package staging implements the short-lived hand-off cache between the
// landing flow and the subscription configuration page.
//
// The landing flow stages the resolved subscription snapshot and embeds the
// returned scoped token in the redirect; the configuration page exchanges
// the token for the snapshot without calling the marketplace again. Redis
// backs the production cache, with an in-memory implementation for tests
// and simulation deployments.
package staging
