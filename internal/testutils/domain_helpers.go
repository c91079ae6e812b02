package testutils

import (
	"testing"

	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// SampleRoadmap returns a roadmap that passes validation.
func SampleRoadmap() *domain.Roadmap {
	quarters := make([]domain.QuarterlyGoal, 0, domain.FirstYearQuarters)
	for _, q := range []string{"Q1", "Q2", "Q3", "Q4"} {
		quarters = append(quarters, domain.QuarterlyGoal{
			Quarter: q,
			Goal:    "Deliver the " + q + " milestone",
			Smart: domain.SmartGoal{
				S: "Specific " + q,
				M: "Measurable " + q,
				A: "Achievable " + q,
				R: "Relevant " + q,
				T: "Time-bound " + q,
			},
		})
	}

	return &domain.Roadmap{
		FiveYearGoal: "Lead a cloud security team",
		Location:     "Tucson, AZ",
		YearlyGoals: []domain.YearlyGoal{
			{Year: 5, YearGoal: "Security team lead"},
			{Year: 4, YearGoal: "Senior security engineer"},
			{Year: 3, YearGoal: "Cloud security certification"},
			{Year: 2, YearGoal: "Own incident response runbooks"},
			{Year: 1, YearGoal: "Move into a cloud operations role", QuarterlySmartGoals: quarters},
		},
	}
}

// SampleRoadmapJSON returns SampleRoadmap serialized as indented JSON.
func SampleRoadmapJSON(t *testing.T) string {
	t.Helper()
	raw, err := SampleRoadmap().JSON()
	require.NoError(t, err)
	return raw
}

// FencedJSON wraps raw in a ```json code fence the way models often answer.
func FencedJSON(raw string) string {
	return "```json\n" + raw + "\n```"
}
