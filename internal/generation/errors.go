package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by generation backends.
var (
	// ErrCompletionFailed is returned when the roadmap completion call fails.
	ErrCompletionFailed = errors.New("roadmap completion failed")

	// ErrResearchFailed is returned when the market research call fails.
	ErrResearchFailed = errors.New("market research failed")

	// ErrEmptyResponse is returned when a model answers with no content.
	ErrEmptyResponse = errors.New("empty response from language model")

	// ErrContentBlocked is returned when the model blocks the prompt or answer.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrInvalidConfig is returned when a client is constructed with bad settings.
	ErrInvalidConfig = errors.New("invalid generation client configuration")
)

// APIError carries the status and message reported by an upstream API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

// Unwrap returns the category sentinel.
func (e *APIError) Unwrap() error {
	return e.Err
}
