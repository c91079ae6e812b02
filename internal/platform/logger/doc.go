// Package logger configures the process-wide slog JSON logger from the
// server config and carries request-scoped loggers, tagged with trace IDs,
// through contexts so handlers and services log with the same fields.
package logger
