package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// RoadmapYears is the number of yearly milestones in a roadmap.
	RoadmapYears = 5

	// FirstYearQuarters is the number of quarterly goals required in year 1.
	FirstYearQuarters = 4
)

var (
	roadmapValidator = validator.New()

	// codeFenceRegex matches Markdown fences the model sometimes wraps JSON in.
	codeFenceRegex = regexp.MustCompile("(?m)^```(?:json)?\\s*|```$")
)

// SmartGoal is the five-field justification attached to a quarterly goal.
type SmartGoal struct {
	S string `json:"S" validate:"required"`
	M string `json:"M" validate:"required"`
	A string `json:"A" validate:"required"`
	R string `json:"R" validate:"required"`
	T string `json:"T" validate:"required"`
}

// QuarterlyGoal is one of the four year-1 sub-goals.
type QuarterlyGoal struct {
	Quarter string    `json:"quarter" validate:"required"`
	Goal    string    `json:"goal" validate:"required"`
	Smart   SmartGoal `json:"smart"`
}

// YearlyGoal is a single yearly milestone. Only year 1 carries quarterly goals.
type YearlyGoal struct {
	Year                int             `json:"year" validate:"min=1,max=5"`
	YearGoal            string          `json:"year_goal" validate:"required"`
	QuarterlySmartGoals []QuarterlyGoal `json:"quarterly_smart_goals,omitempty" validate:"omitempty,dive"`
}

// Roadmap is the structured five-year plan produced by the completion model.
type Roadmap struct {
	FiveYearGoal string       `json:"five_year_goal" validate:"required"`
	Location     string       `json:"location" validate:"required"`
	YearlyGoals  []YearlyGoal `json:"yearly_goals" validate:"len=5,dive"`
}

// Validate checks the roadmap invariants: the years present are exactly
// 1 through 5, year 1 has exactly four quarterly goals and no other year
// has any.
func (r *Roadmap) Validate() error {
	if err := roadmapValidator.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoadmap, err)
	}

	seen := make(map[int]bool, RoadmapYears)
	for _, yg := range r.YearlyGoals {
		if seen[yg.Year] {
			return fmt.Errorf("%w: year %d appears more than once", ErrInvalidRoadmap, yg.Year)
		}
		seen[yg.Year] = true

		quarters := len(yg.QuarterlySmartGoals)
		if yg.Year == 1 && quarters != FirstYearQuarters {
			return fmt.Errorf("%w: year 1 must contain exactly %d quarterly goals, got %d",
				ErrInvalidRoadmap, FirstYearQuarters, quarters)
		}
		if yg.Year != 1 && quarters != 0 {
			return fmt.Errorf("%w: year %d must not contain quarterly goals", ErrInvalidRoadmap, yg.Year)
		}
	}

	// len=5 plus uniqueness within 1..5 already implies every year is present
	return nil
}

// Year returns the milestone for the given year, or nil.
func (r *Roadmap) Year(year int) *YearlyGoal {
	for i := range r.YearlyGoals {
		if r.YearlyGoals[i].Year == year {
			return &r.YearlyGoals[i]
		}
	}
	return nil
}

// JSON renders the roadmap as indented JSON, the form returned to clients
// and embedded in the research prompt.
func (r *Roadmap) JSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal roadmap: %w", err)
	}
	return string(data), nil
}

// StripCodeFences removes Markdown code-fence lines (``` or ```json) from a
// model response and trims surrounding whitespace.
func StripCodeFences(raw string) string {
	return strings.TrimSpace(codeFenceRegex.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// ParseRoadmap strips code fences from a raw completion, decodes it as JSON
// and validates the result.
func ParseRoadmap(raw string) (*Roadmap, error) {
	clean := StripCodeFences(raw)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidRoadmap)
	}

	var roadmap Roadmap
	if err := json.Unmarshal([]byte(clean), &roadmap); err != nil {
		return nil, fmt.Errorf("%w: response is not valid JSON: %v", ErrInvalidRoadmap, err)
	}

	if err := roadmap.Validate(); err != nil {
		return nil, err
	}

	return &roadmap, nil
}
