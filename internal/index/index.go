// Package index wraps the embedded vector store behind the narrow contract
// the pipeline needs: upsert at ingest, k-NN search and count at query time.
//
// The backing store is a persistent chromem-go collection. chromem reports
// cosine similarity in descending order; this package converts it to a
// distance (1 - similarity) so callers see ascending distance = descending
// relevance and never depend on the metric itself.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// CollectionName is the single collection holding all policy chunks.
const CollectionName = "company_policies"

// ErrUnavailable indicates the backing collection is missing and recovery
// (reingestion) also failed. Fatal: surfaced to the caller as a hard failure.
var ErrUnavailable = errors.New("vector index unavailable")

// State tracks the collection lifecycle. Recovery from a missing collection
// is an explicit transition here, never a side effect of a getter.
type State int

const (
	// StateMissing means the collection does not exist yet.
	StateMissing State = iota
	// StateReingesting means a recovery ingestion run is in flight.
	StateReingesting
	// StateReady means the collection exists and serves searches.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateReingesting:
		return "reingesting"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Reingester rebuilds the collection from the source corpus. Implemented by
// the ingestion orchestrator; the interface lives here because the client
// is its consumer.
type Reingester interface {
	Reingest(ctx context.Context) error
}

// Match is one search hit, ordered by ascending Distance (best first).
type Match struct {
	ID       string
	Document string
	Metadata map[string]string
	// Distance is 1 - cosine similarity as reported by the store.
	// Smaller is more similar.
	Distance float32
}

// Client is the nearest-neighbor store client.
// Reads are safe for concurrent use; Upsert calls are serialized internally.
type Client struct {
	db      *chromem.DB
	embedFn chromem.EmbeddingFunc
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	collection *chromem.Collection
	recovery   Reingester

	// recoveryMu serializes EnsureReady so only one caller drives a
	// reingestion run. Held across the Reingest callback, which re-enters
	// this client through Upsert, so it must stay separate from mu.
	recoveryMu sync.Mutex
}

// Open opens (or creates) the persistent database at path. The collection
// itself is opened lazily: a missing collection is not an error here, it
// just leaves the client in StateMissing until EnsureReady or Upsert runs.
func Open(path string, embedFn chromem.EmbeddingFunc, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector database at %q: %w", path, err)
	}

	c := &Client{db: db, embedFn: embedFn, logger: logger}

	if col := db.GetCollection(CollectionName, embedFn); col != nil {
		c.collection = col
		c.state = StateReady
		logger.Info("loaded existing collection", "collection", CollectionName, "chunks", col.Count())
	} else {
		c.state = StateMissing
		logger.Warn("collection not found, ingestion required", "collection", CollectionName)
	}

	return c, nil
}

// SetRecovery installs the reingestion hook used when the collection is
// missing. Set once during wiring; it breaks the construction cycle between
// the client and the ingestor.
func (c *Client) SetRecovery(r Reingester) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recovery = r
}

// State reports the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// EnsureReady drives the MISSING -> REINGESTING -> READY transition.
// If the collection is missing it triggers exactly one recovery ingestion
// and re-checks; a second miss fails with ErrUnavailable. Safe to call from
// multiple goroutines; only one performs the recovery.
func (c *Client) EnsureReady(ctx context.Context) error {
	c.recoveryMu.Lock()
	defer c.recoveryMu.Unlock()

	c.mu.Lock()
	if c.state == StateReady {
		c.mu.Unlock()
		return nil
	}
	recovery := c.recovery
	if recovery == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: collection %q missing and no recovery configured", ErrUnavailable, CollectionName)
	}
	c.state = StateReingesting
	c.mu.Unlock()

	c.logger.Info("collection missing, reingesting corpus", "collection", CollectionName)

	if err := recovery.Reingest(ctx); err != nil {
		c.setState(StateMissing)
		return fmt.Errorf("%w: recovery ingestion failed: %v", ErrUnavailable, err)
	}

	col := c.db.GetCollection(CollectionName, c.embedFn)
	if col == nil {
		c.setState(StateMissing)
		return fmt.Errorf("%w: collection %q still missing after reingestion", ErrUnavailable, CollectionName)
	}

	c.mu.Lock()
	c.collection = col
	c.state = StateReady
	c.mu.Unlock()

	c.logger.Info("collection recovered", "collection", CollectionName, "chunks", col.Count())
	return nil
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Upsert stores chunks with precomputed vectors. All four slices must have
// equal length; duplicate IDs overwrite the previous entry.
func (c *Client) Upsert(ctx context.Context, ids []string, vectors [][]float32, documents []string, metadatas []map[string]string) error {
	if len(ids) != len(vectors) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("upsert length mismatch: ids=%d vectors=%d documents=%d metadatas=%d",
			len(ids), len(vectors), len(documents), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.collection == nil {
		col, err := c.db.GetOrCreateCollection(CollectionName, map[string]string{
			"description": "Company policy documents",
		}, c.embedFn)
		if err != nil {
			return fmt.Errorf("creating collection %q: %w", CollectionName, err)
		}
		c.collection = col
		c.state = StateReady
	}

	docs := make([]chromem.Document, len(ids))
	for i := range ids {
		docs[i] = chromem.Document{
			ID:        ids[i],
			Embedding: vectors[i],
			Content:   documents[i],
			Metadata:  metadatas[i],
		}
	}

	if err := c.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding %d documents: %w", len(docs), err)
	}

	return nil
}

// Search returns up to k matches for the query vector, best first.
// k is clamped to the collection size: asking for more than exists returns
// everything available, never an error. An empty collection yields an empty
// result.
func (c *Client) Search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("search k must be positive, got %d", k)
	}

	c.mu.Lock()
	col := c.collection
	c.mu.Unlock()

	if col == nil {
		return nil, fmt.Errorf("%w: collection %q not loaded", ErrUnavailable, CollectionName)
	}

	// chromem rejects nResults larger than the collection, so clamp.
	count := col.Count()
	if count == 0 {
		return []Match{}, nil
	}
	if k > count {
		k = count
	}

	results, err := col.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	matches := make([]Match, len(results))
	for i, res := range results {
		matches[i] = Match{
			ID:       res.ID,
			Document: res.Content,
			Metadata: res.Metadata,
			Distance: 1 - res.Similarity,
		}
	}

	return matches, nil
}

// Count returns the number of chunks in the collection, 0 when missing.
func (c *Client) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.collection == nil {
		return 0
	}
	return c.collection.Count()
}

// Reset drops the collection so a full reingestion can rebuild it.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.DeleteCollection(CollectionName); err != nil {
		return fmt.Errorf("deleting collection %q: %w", CollectionName, err)
	}
	c.collection = nil
	c.state = StateMissing
	return nil
}
