// Package embed wraps a Genkit ai.Embedder behind a lazily-resolved,
// concurrency-safe embedder shared by ingestion and query handling.
//
// Both sides must use the same embedding model: a query vector and a chunk
// vector are only comparable when produced by the same model, so the
// resolved embedder is fixed for the lifetime of the process.
package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/firebase/genkit/go/ai"
	chromem "github.com/philippgille/chromem-go"
)

// ErrUnavailable indicates the embedding model could not be resolved.
// This is fatal to the whole pipeline: no query or ingestion can proceed
// without embeddings, and there is no degraded mode.
var ErrUnavailable = errors.New("embedding model unavailable")

// Provider resolves the underlying ai.Embedder. It runs at most once, on
// first use, so components that never embed (e.g. a health probe) never pay
// the resolution cost.
type Provider func() (ai.Embedder, error)

// Embedder is a lazily-initialized text embedder.
// Safe for concurrent use by multiple goroutines.
type Embedder struct {
	provide Provider
	logger  *slog.Logger

	once     sync.Once
	embedder ai.Embedder
	initErr  error
}

// New creates an Embedder that resolves its backing model through provide
// on first use. logger may be nil.
func New(provide Provider, logger *slog.Logger) *Embedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedder{provide: provide, logger: logger}
}

// Fixed wraps an already-resolved ai.Embedder, mainly for tests.
func Fixed(e ai.Embedder) *Embedder {
	return New(func() (ai.Embedder, error) { return e, nil }, nil)
}

// resolve performs the one-time embedder lookup.
func (e *Embedder) resolve() (ai.Embedder, error) {
	e.once.Do(func() {
		emb, err := e.provide()
		if err != nil {
			e.initErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			return
		}
		if emb == nil {
			e.initErr = fmt.Errorf("%w: provider returned nil embedder", ErrUnavailable)
			return
		}
		e.embedder = emb
		e.logger.Debug("embedding model resolved", "embedder", emb.Name())
	})
	return e.embedder, e.initErr
}

// Embed maps each text to a fixed-dimension vector, preserving order.
// Deterministic for a fixed model version.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	emb, err := e.resolve()
	if err != nil {
		return nil, err
	}

	input := make([]*ai.Document, len(texts))
	for i, text := range texts {
		input[i] = ai.DocumentFromText(text, nil)
	}

	resp, err := emb.Embed(ctx, &ai.EmbedRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts: %w", len(texts), err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, em := range resp.Embeddings {
		if len(em.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding returned for text %d", i)
		}
		vectors[i] = em.Embedding
	}

	return vectors, nil
}

// EmbedOne maps a single text to its vector.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbeddingFunc adapts the Embedder to chromem-go's embedding callback.
// chromem only calls it when a document arrives without a precomputed
// vector; ingestion always precomputes, so in practice this covers ad-hoc
// collection operations.
func (e *Embedder) EmbeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return e.EmbedOne(ctx, text)
	}
}
