// Package generation defines the boundary between the application core and
// the external language model services. RoadmapCompleter turns a roadmap
// prompt into raw JSON text (implemented by the Gemini client) and
// MarketResearcher turns a research prompt into a Markdown report
// (implemented by the Perplexity client).
package generation
