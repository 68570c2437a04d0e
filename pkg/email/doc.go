// Package email sends transactional purchaser notifications through
// Postmark, with a log-only sender for development.
package email
