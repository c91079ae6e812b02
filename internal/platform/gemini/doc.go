// Package gemini implements generation.RoadmapCompleter on top of Google's
// Gemini API through the google.golang.org/genai SDK.
package gemini
