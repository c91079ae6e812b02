package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// locationRegex enforces the "City, ST" format, e.g. "Tucson, AZ".
var locationRegex = regexp.MustCompile(`^[A-Za-z\s\-]{2,},\s*[A-Z]{2}$`)

// InputRules holds the limits applied to roadmap requests.
type InputRules struct {
	MinGoalLength     int
	MaxResumeBytes    int64
	MaxResumeChars    int
	SnippetChars      int
	AllowedExtensions []string
}

// DefaultInputRules returns the limits used when none are configured.
func DefaultInputRules() InputRules {
	return InputRules{
		MinGoalLength:     10,
		MaxResumeBytes:    500 * 1024,
		MaxResumeChars:    10000,
		SnippetChars:      3000,
		AllowedExtensions: []string{"pdf", "docx", "txt"},
	}
}

// ValidateGoal trims the goal and checks its minimum length.
func (r InputRules) ValidateGoal(goal string) (string, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return "", NewValidationError("goal", "is required", nil)
	}
	if utf8.RuneCountInString(goal) < r.MinGoalLength {
		return "", NewValidationError("goal", fmt.Sprintf("5-year goal must be at least %d characters long", r.MinGoalLength), nil)
	}
	return goal, nil
}

// ValidateLocation trims the location and checks the "City, ST" format.
func (r InputRules) ValidateLocation(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", NewValidationError("location", "is required", nil)
	}
	if !locationRegex.MatchString(location) {
		return "", NewValidationError("location",
			`must be in the format "City, ST" (e.g., "Tucson, AZ")`, ErrInvalidFormat)
	}
	return location, nil
}

// ValidateResumeFile checks the résumé extension and size before any
// extraction is attempted. It returns the normalized extension.
func (r InputRules) ValidateResumeFile(filename string, size int64) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" || !slices.Contains(r.AllowedExtensions, ext) {
		return "", NewValidationError("resume", "invalid file type", ErrResumeUnsupported)
	}
	if size > r.MaxResumeBytes {
		return "", NewValidationError("resume",
			"resume too large (max "+humanBytes(r.MaxResumeBytes)+")", ErrResumeTooLarge)
	}
	return ext, nil
}

// ValidateResumeText checks the extracted text. Empty text means the
// extractor failed or the document was too short to be useful.
func (r InputRules) ValidateResumeText(text string) error {
	if text == "" {
		return NewValidationError("resume", "failed to extract text from resume", ErrResumeUnreadable)
	}
	if utf8.RuneCountInString(text) > r.MaxResumeChars {
		return NewValidationError("resume", "resume too long (max ~2 pages)", ErrResumeTooLong)
	}
	return nil
}

// Snippet truncates résumé text to the configured character budget.
func (r InputRules) Snippet(text string) string {
	return TruncateRunes(text, r.SnippetChars)
}

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func humanBytes(n int64) string {
	if n%1024 == 0 {
		return strconv.FormatInt(n/1024, 10) + "KB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
