// Package perplexity implements generation.MarketResearcher against the
// Perplexity chat completions API.
package perplexity
