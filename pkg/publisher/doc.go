// Package publisher supplies the publisher-side landing configuration:
// where to send buyers after purchase, where to send returning customers,
// and the optional marketing-page fallback for tokenless visits.
//
// The only templating rule in the system lives here: the literal
// {subscription-id} token in a configured URL is replaced with the actual
// subscription ID, case-sensitively, before redirecting.
package publisher
