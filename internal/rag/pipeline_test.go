package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/koopa0/policyrag/internal/log"
)

type fakeRetriever struct {
	chunks []Chunk
	err    error
	lastK  int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, topK int) ([]Chunk, error) {
	f.lastK = topK
	return f.chunks, f.err
}

type fakeGenerator struct {
	answer     string
	err        error
	callCount  int
	lastSystem string
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	f.callCount++
	f.lastSystem = system
	f.lastPrompt = prompt
	return f.answer, f.err
}

func pipelineChunks() []Chunk {
	return []Chunk{
		{ChunkID: "pto-0", Text: "Employees accrue 15 days of PTO per year.", DocID: "HR-PTO-001", Title: "PTO Policy", Distance: 0.1},
		{ChunkID: "pto-1", Text: strings.Repeat("carryover rules ", 30), DocID: "HR-PTO-001", Title: "PTO Policy", Distance: 0.2},
	}
}

func TestQuery(t *testing.T) {
	gen := &fakeGenerator{answer: "You get 15 days [Source 1]."}
	p := NewPipeline(&fakeRetriever{chunks: pipelineChunks()}, gen, log.NewNop())

	result, err := p.Query(context.Background(), "How many PTO days do I get?", QueryOptions{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if result.Answer != "You get 15 days [Source 1]." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if result.Degraded {
		t.Error("Degraded = true on a clean run")
	}
	if result.NumSources != 2 || len(result.Sources) != 2 {
		t.Errorf("NumSources = %d, Sources = %d, want 2/2", result.NumSources, len(result.Sources))
	}
	if result.Question != "How many PTO days do I get?" {
		t.Errorf("Question = %q", result.Question)
	}

	if gen.lastSystem != SystemPrompt {
		t.Errorf("system message = %q", gen.lastSystem)
	}
	if !strings.Contains(gen.lastPrompt, "[Source 1: HR-PTO-001 - PTO Policy]") {
		t.Error("prompt missing first source block")
	}

	// Sources numbered from 1 in prompt order.
	if result.Sources[0].Num != 1 || result.Sources[1].Num != 2 {
		t.Errorf("source numbers = %d, %d, want 1, 2", result.Sources[0].Num, result.Sources[1].Num)
	}
}

func TestQueryNoResultsSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{answer: "should never appear"}
	p := NewPipeline(&fakeRetriever{}, gen, log.NewNop())

	result, err := p.Query(context.Background(), "anything", QueryOptions{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if result.Answer != NoResultsAnswer {
		t.Errorf("Answer = %q, want the fixed no-results text", result.Answer)
	}
	if gen.callCount != 0 {
		t.Errorf("generator called %d times with nothing retrieved", gen.callCount)
	}
	if result.Sources == nil || len(result.Sources) != 0 {
		t.Errorf("Sources = %v, want empty non-nil slice", result.Sources)
	}
	if result.Degraded {
		t.Error("no-results answer must not be marked degraded")
	}
}

func TestQueryGenerationFailureIsDegraded(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("provider quota exceeded")}
	p := NewPipeline(&fakeRetriever{chunks: pipelineChunks()}, gen, log.NewNop())

	result, err := p.Query(context.Background(), "q", QueryOptions{})
	if err != nil {
		t.Fatalf("Query() error = %v, generation failures must not fail the pipeline", err)
	}

	if result.Answer != "Error generating response: provider quota exceeded" {
		t.Errorf("Answer = %q", result.Answer)
	}
	if !result.Degraded {
		t.Error("Degraded = false after generation failure")
	}
	if len(result.Sources) != 2 {
		t.Errorf("Sources = %d, want 2 (retrieval still succeeded)", len(result.Sources))
	}
}

func TestQueryRetrievalFailureIsFatal(t *testing.T) {
	p := NewPipeline(&fakeRetriever{err: errors.New("index unavailable")}, &fakeGenerator{}, log.NewNop())

	if _, err := p.Query(context.Background(), "q", QueryOptions{}); err == nil {
		t.Error("Query() with failing retrieval succeeded, want error")
	}
}

func TestQuerySnippetTruncation(t *testing.T) {
	p := NewPipeline(&fakeRetriever{chunks: pipelineChunks()}, &fakeGenerator{answer: "ok"}, log.NewNop())

	result, err := p.Query(context.Background(), "q", QueryOptions{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	short := result.Sources[0]
	if short.TextSnippet != short.FullText {
		t.Errorf("short text should not be truncated: %q", short.TextSnippet)
	}

	long := result.Sources[1]
	if !strings.HasSuffix(long.TextSnippet, "...") {
		t.Errorf("long snippet missing ellipsis: %q", long.TextSnippet)
	}
	if got := len([]rune(long.TextSnippet)); got != snippetLimit+3 {
		t.Errorf("snippet length = %d, want %d", got, snippetLimit+3)
	}
	if long.FullText != pipelineChunks()[1].Text {
		t.Error("FullText must stay untruncated")
	}
}

func TestQueryRerankReordersSources(t *testing.T) {
	chunks := []Chunk{
		{ChunkID: "misc", Text: "office parking assignments", DocID: "FAC-001", Title: "Facilities"},
		{ChunkID: "pto", Text: "vacation carryover limits for employees", DocID: "HR-PTO-001", Title: "PTO Policy"},
	}
	gen := &fakeGenerator{answer: "ok"}
	p := NewPipeline(&fakeRetriever{chunks: chunks}, gen, log.NewNop())

	result, err := p.Query(context.Background(), "vacation carryover limits", QueryOptions{Rerank: true})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if result.Sources[0].DocID != "HR-PTO-001" {
		t.Errorf("source 1 = %q, want reranked PTO chunk first", result.Sources[0].DocID)
	}
	if result.Sources[0].Num != 1 {
		t.Errorf("source numbering must restart at 1 after rerank, got %d", result.Sources[0].Num)
	}
	if !strings.Contains(gen.lastPrompt, "[Source 1: HR-PTO-001") {
		t.Error("prompt must reflect reranked order")
	}
}

func TestQueryPassesTopK(t *testing.T) {
	ret := &fakeRetriever{chunks: pipelineChunks()}
	p := NewPipeline(ret, &fakeGenerator{answer: "ok"}, log.NewNop())

	if _, err := p.Query(context.Background(), "q", QueryOptions{TopK: 7}); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if ret.lastK != 7 {
		t.Errorf("retriever topK = %d, want 7", ret.lastK)
	}
}
