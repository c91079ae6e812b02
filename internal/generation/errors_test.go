package generation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/roadmap-api/internal/generation"
	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	t.Parallel()

	err := &generation.APIError{
		Provider:   "perplexity",
		StatusCode: 401,
		Message:    "Invalid API key",
		Err:        generation.ErrResearchFailed,
	}

	assert.Equal(t, "perplexity API error (status 401): Invalid API key", err.Error())
	assert.True(t, errors.Is(err, generation.ErrResearchFailed))
	assert.False(t, errors.Is(err, generation.ErrCompletionFailed))

	noStatus := &generation.APIError{Provider: "gemini", Message: "quota", Err: generation.ErrCompletionFailed}
	assert.Equal(t, "gemini API error: quota", noStatus.Error())
}

func TestFuncAdapters(t *testing.T) {
	t.Parallel()

	var c generation.RoadmapCompleter = generation.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		return "roadmap:" + prompt, nil
	})
	var r generation.MarketResearcher = generation.ResearcherFunc(func(_ context.Context, prompt string) (string, error) {
		return "report:" + prompt, nil
	})

	got, err := c.CompleteRoadmap(context.Background(), "x")
	assert.NoError(t, err)
	assert.Equal(t, "roadmap:x", got)

	got, err = r.Research(context.Background(), "y")
	assert.NoError(t, err)
	assert.Equal(t, "report:y", got)
}
