// Package chunker splits document text into overlapping fixed-size word
// windows, the atomic unit of retrieval.
package chunker

import (
	"crypto/md5" // #nosec G501 -- content fingerprint for IDs, not security
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/koopa0/policyrag/internal/document"
)

// ErrInvalidChunking indicates chunk size and overlap cannot produce
// forward progress (size <= overlap, or non-positive size).
var ErrInvalidChunking = errors.New("invalid chunking configuration")

// Chunk is one word window extracted from a document. Chunks are immutable;
// they are created at ingestion and replaced only by a full reingestion.
type Chunk struct {
	// ID is deterministic: {doc_id}_chunk_{ordinal}_{8-hex content hash}.
	// The hash component keeps IDs unique across reingestion runs even when
	// ordinals collide but content differs.
	ID string

	// DocID is a back-reference to the source document, not ownership.
	DocID string

	// Index is the 0-based ordinal of this chunk within its document.
	Index int

	// Text is the chunk content, non-empty by construction.
	Text string

	// Title is carried from the source document for citation display.
	Title string

	// FilePath is carried from the source document for observability.
	FilePath string
}

// Chunker produces word-window chunks with a fixed size and overlap.
type Chunker struct {
	size    int // window size in words
	overlap int // words shared between consecutive windows
}

// New creates a Chunker. size must be positive and overlap must satisfy
// 0 <= overlap < size; anything else is rejected with ErrInvalidChunking
// before any text is processed.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunking, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d",
			ErrInvalidChunking, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the configured window size in words.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in words.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits a document's content into overlapping word windows.
//
// The window slides by (size - overlap) words until the start passes the
// last word, so a short tail chunk is emitted whenever the final stride
// still lands inside the document — even when the previous window already
// reached the end. Chunk counts and IDs depend on this, so the loop must
// not terminate early. Boundaries are word-aligned: words are
// whitespace-delimited via strings.Fields. Empty or whitespace-only
// content yields zero chunks.
func (c *Chunker) Chunk(doc *document.Document) []Chunk {
	words := strings.Fields(doc.Content)
	if len(words) == 0 {
		return nil
	}

	step := c.size - c.overlap
	chunks := make([]Chunk, 0, len(words)/step+1)

	for start, ordinal := 0, 0; start < len(words); start, ordinal = start+step, ordinal+1 {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}

		text := strings.Join(words[start:end], " ")
		chunks = append(chunks, Chunk{
			ID:       chunkID(doc.DocID, ordinal, text),
			DocID:    doc.DocID,
			Index:    ordinal,
			Text:     text,
			Title:    doc.Title,
			FilePath: doc.FilePath,
		})
	}

	return chunks
}

// chunkID builds the deterministic chunk identifier. Identical content at
// the same ordinal always hashes to the same ID (idempotent reingestion).
func chunkID(docID string, ordinal int, text string) string {
	sum := md5.Sum([]byte(text)) // #nosec G401 -- fingerprint only
	return fmt.Sprintf("%s_chunk_%d_%s", docID, ordinal, hex.EncodeToString(sum[:])[:8])
}
