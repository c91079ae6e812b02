// Package postgres provides the PostgreSQL backend for the daily usage
// counter, along with connection setup and the embedded goose migrations
// that create its schema.
package postgres
