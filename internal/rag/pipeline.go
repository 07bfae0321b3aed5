package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// snippetLimit caps Source.TextSnippet length before truncation.
const snippetLimit = 300

// ChunkRetriever is the retrieval stage the pipeline depends on.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Chunk, error)
}

// QueryOptions tune a single pipeline run.
type QueryOptions struct {
	// TopK overrides the configured retrieval depth when positive.
	TopK int
	// Rerank applies lexical reranking between retrieval and prompting.
	Rerank bool
}

// Pipeline answers questions about the indexed corpus.
type Pipeline struct {
	retriever ChunkRetriever
	generator Generator
	logger    *slog.Logger
}

func NewPipeline(retriever ChunkRetriever, generator Generator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{retriever: retriever, generator: generator, logger: logger}
}

// Query runs retrieve -> (rerank) -> prompt -> generate -> assemble.
//
// Retrieval failures are fatal. Generation failures are not: the error text
// becomes the answer and the result is marked Degraded, because the cited
// sources still have value on their own. When nothing is retrieved the
// model is never invoked and a fixed no-information answer is returned.
func (p *Pipeline) Query(ctx context.Context, question string, opts QueryOptions) (*Result, error) {
	start := time.Now()

	chunks, err := p.retriever.Retrieve(ctx, question, opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	if len(chunks) == 0 {
		p.logger.Info("no chunks retrieved", "question_len", len(question))
		return &Result{
			Answer:   NoResultsAnswer,
			Sources:  []Source{},
			Question: question,
		}, nil
	}

	if opts.Rerank {
		chunks = Rerank(question, chunks)
	}

	prompt := BuildPrompt(question, chunks)

	degraded := false
	answer, err := p.generator.Generate(ctx, SystemPrompt, prompt)
	if err != nil {
		// The retrieval already succeeded; surface the failure in the
		// answer body rather than dropping the sources.
		p.logger.Error("generation failed", "error", err)
		answer = fmt.Sprintf("Error generating response: %s", err)
		degraded = true
	}

	result := &Result{
		Answer:     strings.TrimSpace(answer),
		Sources:    assembleSources(chunks),
		Question:   question,
		NumSources: len(chunks),
		Degraded:   degraded,
	}

	p.logger.Info("query answered",
		"sources", result.NumSources,
		"degraded", degraded,
		"rerank", opts.Rerank,
		"duration", time.Since(start).Round(time.Millisecond))

	return result, nil
}

// assembleSources numbers chunks from 1 in prompt order so citations in the
// answer line up with the returned sources.
func assembleSources(chunks []Chunk) []Source {
	sources := make([]Source, len(chunks))
	for i, c := range chunks {
		sources[i] = Source{
			Num:         i + 1,
			DocID:       c.DocID,
			Title:       c.Title,
			TextSnippet: snippet(c.Text),
			FullText:    c.Text,
		}
	}
	return sources
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLimit {
		return text
	}
	return string(runes[:snippetLimit]) + "..."
}
