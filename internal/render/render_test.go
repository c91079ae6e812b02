package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_HTML(t *testing.T) {
	t.Parallel()

	r := New()

	tests := []struct {
		name     string
		markdown string
		contains []string
		excludes []string
	}{
		{
			name:     "headers and emphasis",
			markdown: "# Market Intelligence Report\n\n## Executive Summary\n**Strong** demand.",
			contains: []string{"<h1>Market Intelligence Report</h1>", "<h2>Executive Summary</h2>", "<strong>Strong</strong>"},
		},
		{
			name:     "links",
			markdown: "See [BSides Tucson](https://example.com/bsides).",
			contains: []string{`<a href="https://example.com/bsides">BSides Tucson</a>`},
		},
		{
			name:     "task list",
			markdown: "- [ ] **Q1:** Earn certification",
			contains: []string{`<input disabled="" type="checkbox"`, "<strong>Q1:</strong>"},
		},
		{
			name:     "raw html is not passed through",
			markdown: "<script>alert(1)</script>\n\ntext",
			excludes: []string{"<script>"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.HTML(tc.markdown)
			require.NoError(t, err)
			for _, want := range tc.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tc.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}

func TestRenderer_Empty(t *testing.T) {
	t.Parallel()

	got, err := New().HTML("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
