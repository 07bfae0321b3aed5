// Package ingest orchestrates the corpus load: walk the documents
// directory, parse and chunk each file, embed the chunks, and upsert them
// into the vector index. A summary of each run is persisted as JSON so the
// service can report what is indexed without rescanning the corpus.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/koopa0/policyrag/internal/chunker"
	"github.com/koopa0/policyrag/internal/document"
)

// defaultBatchSize caps how many chunks go into a single index upsert.
const defaultBatchSize = 100

// StatsFileName is the summary file written next to the vector index.
const StatsFileName = "ingestion_stats.json"

// Embedder turns chunk texts into vectors, one per input, order preserved.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer stores embedded chunks.
type Indexer interface {
	Upsert(ctx context.Context, ids []string, vectors [][]float32, documents []string, metadatas []map[string]string) error
}

// DocStats summarizes one ingested file.
type DocStats struct {
	File   string `json:"file"`
	Title  string `json:"title"`
	DocID  string `json:"doc_id"`
	Chunks int    `json:"chunks"`
}

// Stats summarizes a full ingestion run.
type Stats struct {
	TotalDocs   int        `json:"total_docs"`
	TotalChunks int        `json:"total_chunks"`
	Documents   []DocStats `json:"documents"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Options configures an Ingestor.
type Options struct {
	// DocsDir is the corpus directory, scanned non-recursively.
	DocsDir string
	// StatsPath is where the run summary is written. Empty disables it.
	StatsPath string
	// BatchSize caps chunks per upsert; defaults to 100.
	BatchSize int
}

// Ingestor loads the document corpus into the index.
// Runs are serialized: a second Ingest blocks until the first finishes.
type Ingestor struct {
	opts     Options
	chunker  *chunker.Chunker
	embedder Embedder
	index    Indexer
	logger   *slog.Logger

	mu sync.Mutex
}

func New(opts Options, ch *chunker.Chunker, emb Embedder, idx Indexer, logger *slog.Logger) *Ingestor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{opts: opts, chunker: ch, embedder: emb, index: idx, logger: logger}
}

// Ingest runs a full corpus load and returns its summary. Files that fail
// to parse are logged and skipped; embedding or index failures abort the
// run because a partially embedded corpus would answer from a skewed index.
func (ing *Ingestor) Ingest(ctx context.Context) (*Stats, error) {
	ing.mu.Lock()
	defer ing.mu.Unlock()

	files, err := ing.listDocuments()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported documents found in %q", ing.opts.DocsDir)
	}

	ing.logger.Info("starting ingestion", "dir", ing.opts.DocsDir, "files", len(files))
	start := time.Now()

	stats := &Stats{Documents: make([]DocStats, 0, len(files))}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := document.Parse(path)
		if err != nil {
			ing.logger.Warn("skipping unparseable document", "file", path, "error", err)
			continue
		}

		chunks := ing.chunker.Chunk(doc)
		if len(chunks) == 0 {
			ing.logger.Warn("skipping empty document", "file", path)
			continue
		}

		if err := ing.indexChunks(ctx, chunks); err != nil {
			return nil, fmt.Errorf("indexing %q: %w", path, err)
		}

		stats.TotalDocs++
		stats.TotalChunks += len(chunks)
		stats.Documents = append(stats.Documents, DocStats{
			File:   filepath.Base(path),
			Title:  doc.Title,
			DocID:  doc.DocID,
			Chunks: len(chunks),
		})
		ing.logger.Info("ingested document", "file", filepath.Base(path), "doc_id", doc.DocID, "chunks", len(chunks))
	}

	if stats.TotalDocs == 0 {
		return nil, fmt.Errorf("all %d documents in %q failed to ingest", len(files), ing.opts.DocsDir)
	}

	stats.GeneratedAt = time.Now().UTC()
	if err := ing.writeStats(stats); err != nil {
		// The index is already current; a summary write failure is not
		// worth failing the run over.
		ing.logger.Warn("could not write ingestion summary", "path", ing.opts.StatsPath, "error", err)
	}

	ing.logger.Info("ingestion complete",
		"docs", stats.TotalDocs,
		"chunks", stats.TotalChunks,
		"duration", time.Since(start).Round(time.Millisecond))

	return stats, nil
}

// Reingest satisfies the index recovery hook by running a full ingestion.
func (ing *Ingestor) Reingest(ctx context.Context) error {
	_, err := ing.Ingest(ctx)
	return err
}

// Stats returns the summary of the most recent run, read from disk.
// A missing summary file yields (nil, nil).
func (ing *Ingestor) Stats() (*Stats, error) {
	if ing.opts.StatsPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(ing.opts.StatsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ingestion summary: %w", err)
	}

	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("parsing ingestion summary %q: %w", ing.opts.StatsPath, err)
	}
	return &stats, nil
}

func (ing *Ingestor) listDocuments() ([]string, error) {
	entries, err := os.ReadDir(ing.opts.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("reading documents directory %q: %w", ing.opts.DocsDir, err)
	}

	supported := document.SupportedExtensions()
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if slices.Contains(supported, ext) {
			files = append(files, filepath.Join(ing.opts.DocsDir, entry.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// indexChunks embeds and upserts one document's chunks in batches.
func (ing *Ingestor) indexChunks(ctx context.Context, chunks []chunker.Chunk) error {
	for batch := range slices.Chunk(chunks, ing.opts.BatchSize) {
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := ing.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding %d chunks: %w", len(texts), err)
		}

		ids := make([]string, len(batch))
		docs := make([]string, len(batch))
		metas := make([]map[string]string, len(batch))
		for i, c := range batch {
			ids[i] = c.ID
			docs[i] = c.Text
			metas[i] = map[string]string{
				"doc_id":      c.DocID,
				"title":       c.Title,
				"chunk_index": strconv.Itoa(c.Index),
				"source_file": filepath.Base(c.FilePath),
			}
		}

		if err := ing.index.Upsert(ctx, ids, vectors, docs, metas); err != nil {
			return err
		}
	}
	return nil
}

func (ing *Ingestor) writeStats(stats *Stats) error {
	if ing.opts.StatsPath == "" {
		return nil
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ing.opts.StatsPath, data, 0o600)
}
