// Package logger builds the service's slog.Logger: env-driven level and
// format, a static service tag, and context extractors that attach the
// fulfillment correlation IDs (subscription and operation) to every record
// logged within a request.
package logger
