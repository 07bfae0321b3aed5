package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// docIDScanLines is how many leading lines are searched for a
// "Document ID:" marker in markdown sources.
const docIDScanLines = 20

var titleCaser = cases.Title(language.English)

// Parse reads and parses the file at path, dispatching on its extension.
// Returns ErrUnsupportedFormat for extensions no parser handles.
func Parse(path string) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return parseMarkdown(path)
	case ".txt":
		return parseText(path)
	case ".pdf":
		return parsePDF(path)
	case ".html", ".htm":
		return parseHTML(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// parseMarkdown renders markdown to HTML, strips the markup, and pulls the
// document ID and title out of the raw source.
func parseMarkdown(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading markdown file: %w", err)
	}

	var html bytes.Buffer
	if err := goldmark.Convert(raw, &html); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	text, err := extractText(&html)
	if err != nil {
		return nil, fmt.Errorf("extracting markdown text: %w", err)
	}

	lines := strings.Split(string(raw), "\n")

	title := fileStem(path)
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		title = strings.TrimSpace(strings.TrimLeft(lines[0], "# "))
	}

	docID := ""
	for i, line := range lines {
		if i >= docIDScanLines {
			break
		}
		if _, after, found := strings.Cut(line, "Document ID:"); found {
			docID = strings.TrimSpace(strings.ReplaceAll(after, "**", ""))
			break
		}
	}
	if docID == "" {
		docID = strings.ToUpper(fileStem(path))
	}

	return &Document{
		DocID:        docID,
		Title:        title,
		Content:      text,
		FilePath:     path,
		SourceFormat: FormatMarkdown,
	}, nil
}

func parseText(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}

	return &Document{
		DocID:        strings.ToUpper(fileStem(path)),
		Title:        stemTitle(path),
		Content:      string(raw),
		FilePath:     path,
		SourceFormat: FormatText,
	}, nil
}

func parsePDF(path string) (*Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, fmt.Errorf("reading pdf text: %w", err)
	}

	return &Document{
		DocID:        strings.ToUpper(fileStem(path)),
		Title:        stemTitle(path),
		Content:      buf.String(),
		FilePath:     path,
		SourceFormat: FormatPDF,
	}, nil
}

func parseHTML(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening html file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = fileStem(path)
	}

	doc.Find("script, style").Remove()

	return &Document{
		DocID:        strings.ToUpper(fileStem(path)),
		Title:        title,
		Content:      doc.Text(),
		FilePath:     path,
		SourceFormat: FormatHTML,
	}, nil
}

// extractText strips HTML markup from r and returns the remaining text.
func extractText(r *bytes.Buffer) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing rendered html: %w", err)
	}
	return doc.Text(), nil
}

// fileStem returns the file name without directory or extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// stemTitle turns a file stem like "remote_work_policy" into "Remote Work Policy".
func stemTitle(path string) string {
	return titleCaser.String(strings.ReplaceAll(fileStem(path), "_", " "))
}
