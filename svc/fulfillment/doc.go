// Package fulfillment composes the HTTP surface of the bridge: the chi
// router exposing the landing and webhook endpoints, the staged snapshot
// exchange, and the email notifier wiring.
package fulfillment
