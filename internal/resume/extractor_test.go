package resume

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longText = "Systems administrator with six years of Windows Server, PowerShell and Azure AD experience."

func newTestExtractor() *Extractor {
	return NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// buildDocx assembles the minimum archive the docx reader accepts.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"word/document.xml":            body.String(),
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_Text(t *testing.T) {
	t.Parallel()

	e := newTestExtractor()

	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{"plain text", "resume.txt", []byte("  " + longText + "\n"), longText},
		{"uppercase extension", "RESUME.TXT", []byte(longText), longText},
		{"too short", "resume.txt", []byte("Too short"), ""},
		{"invalid utf-8", "resume.txt", append([]byte(longText), 0xff, 0xfe), ""},
		{"unsupported extension", "resume.rtf", []byte(longText), ""},
		{"no extension", "resume", []byte(longText), ""},
		{"garbage pdf", "resume.pdf", []byte("%PDF-1.4 not really a pdf"), ""},
		{"garbage docx", "resume.docx", []byte("PK not a zip"), ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, e.Extract(tc.filename, tc.data))
		})
	}
}

func TestExtract_MinCharsCountsRunes(t *testing.T) {
	t.Parallel()

	e := newTestExtractor()
	text := strings.Repeat("é", MinChars)
	assert.Equal(t, text, e.Extract("resume.txt", []byte(text)))
	assert.Empty(t, e.Extract("resume.txt", []byte(text[:len(text)-2])))
}

func TestExtract_Docx(t *testing.T) {
	t.Parallel()

	data := buildDocx(t,
		"Jane Doe, Security Analyst",
		"CompTIA Security+ and three years of SOC tier 1 triage at a regional bank.",
	)

	got := newTestExtractor().Extract("resume.docx", data)
	assert.Equal(t,
		"Jane Doe, Security Analyst\nCompTIA Security+ and three years of SOC tier 1 triage at a regional bank.",
		got)
}

func TestParagraphText(t *testing.T) {
	t.Parallel()

	xmlDoc := `<w:document xmlns:w="w"><w:body>` +
		`<w:p><w:r><w:t>Skills</w:t><w:tab/><w:t>Go &amp; SQL</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr></w:p>` +
		`</w:body></w:document>`

	got, err := paragraphText(xmlDoc)
	require.NoError(t, err)
	assert.Equal(t, "Skills\tGo & SQL\nLine one\nLine two\n\n", got)

	_, err = paragraphText("<w:p><w:t>unterminated")
	assert.Error(t, err)
}
