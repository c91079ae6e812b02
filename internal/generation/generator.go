package generation

import "context"

// RoadmapCompleter produces the raw text of a roadmap from a prompt. The
// text is expected to be JSON, possibly wrapped in Markdown code fences.
type RoadmapCompleter interface {
	CompleteRoadmap(ctx context.Context, prompt string) (string, error)
}

// MarketResearcher produces a Markdown market intelligence report.
type MarketResearcher interface {
	Research(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to RoadmapCompleter.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// CompleteRoadmap calls f.
func (f CompleterFunc) CompleteRoadmap(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ResearcherFunc adapts a function to MarketResearcher.
type ResearcherFunc func(ctx context.Context, prompt string) (string, error)

// Research calls f.
func (f ResearcherFunc) Research(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
