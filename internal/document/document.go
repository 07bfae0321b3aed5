// Package document defines the parsed document model and the per-format
// parsers that produce it from files on disk.
//
// A Document is immutable once parsed: ingestion creates it, the chunker
// consumes it, and only chunks survive into the index.
package document

import "errors"

// ErrUnsupportedFormat indicates a file extension no parser handles.
// Ingestion treats this as a per-document configuration error: the file is
// skipped and logged, the rest of the corpus still ingests.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format identifies the source format a document was parsed from.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatPDF      Format = "pdf"
	FormatHTML     Format = "html"
)

// Document is a parsed source document.
type Document struct {
	// DocID uniquely identifies the document. For markdown it comes from a
	// "Document ID:" marker near the top of the file when present; otherwise
	// it is the upper-cased file stem.
	DocID string

	// Title is a human-readable document title.
	Title string

	// Content is the extracted plain text.
	Content string

	// FilePath is the path the document was parsed from.
	FilePath string

	// SourceFormat records which parser produced this document.
	SourceFormat Format
}

// SupportedExtensions lists the file extensions ingestion will pick up.
func SupportedExtensions() []string {
	return []string{".md", ".txt", ".pdf", ".html", ".htm"}
}
