// Package domain defines the core business entities of the roadmap service:
// the five-year roadmap returned by the completion model, the rules that
// client input must satisfy before any upstream call is made, and the
// errors shared across layers.
package domain
