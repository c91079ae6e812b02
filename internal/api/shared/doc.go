// Package shared holds the request and response helpers used by handlers
// and middleware alike.
package shared
