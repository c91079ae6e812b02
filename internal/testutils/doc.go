// Package testutils holds fixtures and helpers shared by tests across the
// module: sample roadmaps, a capturing slog handler and HTTP assertions.
package testutils
