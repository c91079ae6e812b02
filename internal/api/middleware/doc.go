// Package middleware provides the HTTP middleware installed in front of the
// API handlers.
package middleware
