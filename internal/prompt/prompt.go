// Package prompt renders the prompts sent to the roadmap and research
// models from embedded text/template files.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/roadmap-api/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"indent": indent}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

type roadmapData struct {
	Goal     string
	Location string
	Resume   string
	Quarters []string
}

type researchData struct {
	Location    string
	ResumeJSON  string
	RoadmapJSON string
	Quarters    []domain.QuarterlyGoal
}

// Roadmap builds the roadmap prompt. resume may be empty.
func Roadmap(goal, location, resume string) (string, error) {
	data := roadmapData{
		Goal:     goal,
		Location: location,
		Resume:   resume,
		Quarters: []string{"Q1", "Q2", "Q3", "Q4"},
	}
	return execute("roadmap.tmpl", data)
}

// Research builds the market intelligence prompt for a validated roadmap.
// The resume snippet is embedded as {"resume_summary": ...}.
func Research(roadmap *domain.Roadmap, resumeSnippet, location string) (string, error) {
	if roadmap == nil {
		return "", fmt.Errorf("roadmap cannot be nil")
	}

	roadmapJSON, err := roadmap.JSON()
	if err != nil {
		return "", err
	}
	resumeJSON, err := json.MarshalIndent(map[string]string{"resume_summary": resumeSnippet}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode resume summary: %w", err)
	}

	data := researchData{
		Location:    location,
		ResumeJSON:  string(resumeJSON),
		RoadmapJSON: roadmapJSON,
	}
	if first := roadmap.Year(1); first != nil {
		data.Quarters = first.QuarterlySmartGoals
	}
	return execute("research.tmpl", data)
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func indent(spaces int, s string) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
