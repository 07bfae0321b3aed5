package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/koopa0/policyrag/internal/chunker"
	"github.com/koopa0/policyrag/internal/log"
)

type fakeEmbedder struct {
	callCount int
	err       error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(len(texts[i])), 1, 0}
	}
	return vectors, nil
}

type upsertCall struct {
	ids       []string
	documents []string
	metadatas []map[string]string
}

type fakeIndexer struct {
	calls []upsertCall
	err   error
}

func (f *fakeIndexer) Upsert(_ context.Context, ids []string, vectors [][]float32, documents []string, metadatas []map[string]string) error {
	if f.err != nil {
		return f.err
	}
	if len(ids) != len(vectors) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return errors.New("mismatched upsert lengths")
	}
	f.calls = append(f.calls, upsertCall{ids: ids, documents: documents, metadatas: metadatas})
	return nil
}

func (f *fakeIndexer) totalChunks() int {
	n := 0
	for _, call := range f.calls {
		n += len(call.ids)
	}
	return n
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"pto_policy.md": "# PTO Policy\n\n**Document ID:** HR-PTO-001\n\n" +
			"Employees accrue fifteen days of paid time off per year. " +
			"Unused days carry over up to five days into the next calendar year.",
		"security_policy.txt": "All passwords must be rotated every ninety days. " +
			"Shared accounts are prohibited across all production systems.",
		"notes.xyz": "not a supported format",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("writing corpus file %s: %v", name, err)
		}
	}
	return dir
}

func newTestIngestor(t *testing.T, dir string, emb *fakeEmbedder, idx *fakeIndexer) *Ingestor {
	t.Helper()
	ch, err := chunker.New(10, 2)
	if err != nil {
		t.Fatalf("chunker.New() error = %v", err)
	}
	return New(Options{
		DocsDir:   dir,
		StatsPath: filepath.Join(t.TempDir(), StatsFileName),
	}, ch, emb, idx, log.NewNop())
}

func TestIngest(t *testing.T) {
	dir := writeCorpus(t)
	emb := &fakeEmbedder{}
	idx := &fakeIndexer{}
	ing := newTestIngestor(t, dir, emb, idx)

	stats, err := ing.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if stats.TotalDocs != 2 {
		t.Errorf("TotalDocs = %d, want 2 (unsupported file should be skipped)", stats.TotalDocs)
	}
	if stats.TotalChunks != idx.totalChunks() {
		t.Errorf("TotalChunks = %d, but index received %d", stats.TotalChunks, idx.totalChunks())
	}
	if len(stats.Documents) != 2 {
		t.Fatalf("Documents has %d entries, want 2", len(stats.Documents))
	}

	// Directory listing is sorted, so pto_policy.md comes first.
	first := stats.Documents[0]
	if first.File != "pto_policy.md" {
		t.Errorf("first ingested file = %q, want pto_policy.md", first.File)
	}
	if first.DocID != "HR-PTO-001" {
		t.Errorf("first DocID = %q, want HR-PTO-001", first.DocID)
	}
	if first.Title != "PTO Policy" {
		t.Errorf("first Title = %q, want %q", first.Title, "PTO Policy")
	}

	if emb.callCount == 0 {
		t.Error("embedder was never called")
	}
	meta := idx.calls[0].metadatas[0]
	for _, key := range []string{"doc_id", "title", "chunk_index", "source_file"} {
		if meta[key] == "" {
			t.Errorf("metadata missing %q: %v", key, meta)
		}
	}
}

func TestIngestWritesStats(t *testing.T) {
	dir := writeCorpus(t)
	ing := newTestIngestor(t, dir, &fakeEmbedder{}, &fakeIndexer{})

	want, err := ing.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	got, err := ing.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if got == nil {
		t.Fatal("Stats() = nil after a successful run")
	}
	if got.TotalDocs != want.TotalDocs || got.TotalChunks != want.TotalChunks {
		t.Errorf("persisted stats = %d docs/%d chunks, want %d/%d",
			got.TotalDocs, got.TotalChunks, want.TotalDocs, want.TotalChunks)
	}
}

func TestStatsMissingFile(t *testing.T) {
	ing := newTestIngestor(t, t.TempDir(), &fakeEmbedder{}, &fakeIndexer{})

	got, err := ing.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if got != nil {
		t.Errorf("Stats() = %+v before any run, want nil", got)
	}
}

func TestIngestEmptyDirectory(t *testing.T) {
	ing := newTestIngestor(t, t.TempDir(), &fakeEmbedder{}, &fakeIndexer{})

	if _, err := ing.Ingest(context.Background()); err == nil {
		t.Error("Ingest() on empty directory succeeded, want error")
	}
}

func TestIngestEmbedderFailureAborts(t *testing.T) {
	dir := writeCorpus(t)
	idx := &fakeIndexer{}
	ing := newTestIngestor(t, dir, &fakeEmbedder{err: errors.New("model not reachable")}, idx)

	if _, err := ing.Ingest(context.Background()); err == nil {
		t.Error("Ingest() with failing embedder succeeded, want error")
	}
	if len(idx.calls) != 0 {
		t.Errorf("index received %d upserts despite embedding failure", len(idx.calls))
	}
}

func TestIngestIndexFailureAborts(t *testing.T) {
	dir := writeCorpus(t)
	ing := newTestIngestor(t, dir, &fakeEmbedder{}, &fakeIndexer{err: errors.New("store closed")})

	if _, err := ing.Ingest(context.Background()); err == nil {
		t.Error("Ingest() with failing index succeeded, want error")
	}
}

func TestReingest(t *testing.T) {
	dir := writeCorpus(t)
	idx := &fakeIndexer{}
	ing := newTestIngestor(t, dir, &fakeEmbedder{}, idx)

	if err := ing.Reingest(context.Background()); err != nil {
		t.Fatalf("Reingest() error = %v", err)
	}
	if idx.totalChunks() == 0 {
		t.Error("Reingest() indexed no chunks")
	}
}
