// Package httpserver wraps net/http with graceful shutdown, env-driven
// timeouts, and probe handlers for the bridge's HTTP surface.
package httpserver
