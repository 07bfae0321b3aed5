package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/koopa0/policyrag/internal/index"
)

// QueryEmbedder embeds a single query string.
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the nearest-neighbor lookup the retriever depends on.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]index.Match, error)
}

// Retriever embeds a question and fetches its nearest chunks.
// Match order from the index is preserved as-is; relevance ordering is the
// index's contract, not re-derived here.
type Retriever struct {
	embedder QueryEmbedder
	searcher Searcher
	topK     int
	logger   *slog.Logger
}

func NewRetriever(embedder QueryEmbedder, searcher Searcher, topK int, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embedder: embedder, searcher: searcher, topK: topK, logger: logger}
}

// Retrieve returns up to topK chunks for the query. topK <= 0 falls back to
// the configured default. No matching chunks is an empty result, not an
// error; embedding or index failures are.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Chunk, error) {
	if topK <= 0 {
		topK = r.topK
	}

	vector, err := r.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := r.searcher.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	chunks := make([]Chunk, len(matches))
	for i, m := range matches {
		chunks[i] = Chunk{
			ChunkID:  m.ID,
			Text:     m.Document,
			DocID:    m.Metadata["doc_id"],
			Title:    m.Metadata["title"],
			Distance: m.Distance,
		}
	}

	r.logger.Debug("retrieved chunks", "query_len", len(query), "requested", topK, "returned", len(chunks))
	return chunks, nil
}
