// Package usage enforces the service-wide daily quota on roadmap
// generations.
//
// A Limiter owns the decision logic (same day and under the limit, new day,
// or exhausted) and delegates persistence to a Counter. FileCounter keeps a
// single JSON document on disk; the postgres package provides a Counter
// backed by one atomically updated row.
package usage
