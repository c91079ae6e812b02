package resume

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MinChars is the shortest extracted text treated as a résumé.
const MinChars = 50

var errUnsupported = errors.New("unsupported resume format")

// Extractor turns résumé bytes into text.
type Extractor struct {
	minChars int
	logger   *slog.Logger
}

// NewExtractor creates an extractor using MinChars.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		minChars: MinChars,
		logger:   logger.With(slog.String("component", "resume_extractor")),
	}
}

// Extract returns the trimmed text of the document, or "" when the format is
// unsupported, the document cannot be parsed, or the text is shorter than
// MinChars. The format is chosen by filename extension.
func (e *Extractor) Extract(filename string, data []byte) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	text, err := e.extract(ext, data)
	if err != nil {
		e.logger.Warn("failed to extract resume text",
			slog.String("extension", ext),
			slog.Int("bytes", len(data)),
			slog.String("error", err.Error()))
		return ""
	}

	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < e.minChars {
		e.logger.Warn("resume text too short, treating as missing",
			slog.String("extension", ext),
			slog.Int("chars", n))
		return ""
	}

	e.logger.Debug("resume extracted",
		slog.String("extension", ext),
		slog.Int("chars", utf8.RuneCountInString(text)))
	return text
}

func (e *Extractor) extract(ext string, data []byte) (text string, err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parser panic: %v", r)
		}
	}()

	switch ext {
	case "pdf":
		return pdfText(data)
	case "docx":
		return docxText(data)
	case "txt":
		if !utf8.Valid(data) {
			return "", errors.New("text file is not valid UTF-8")
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupported, ext)
	}
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return paragraphText(doc.Editable().GetContent())
}

// paragraphText pulls the text runs out of WordprocessingML, one line per
// paragraph.
func paragraphText(documentXML string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		out    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse docx body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return out.String(), nil
}
