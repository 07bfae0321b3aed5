// Package rag implements the question answering pipeline: embed the
// question, retrieve nearest chunks, optionally rerank them, build a
// guard-railed prompt, and generate a cited answer.
package rag

// Chunk is one retrieved piece of a policy document, in the order the
// index returned it (ascending distance, best first).
type Chunk struct {
	ChunkID  string
	Text     string
	DocID    string
	Title    string
	Distance float32
}

// Source describes one chunk as cited in a Result. Num matches the
// [Source N] labels in the prompt, starting at 1.
type Source struct {
	Num         int    `json:"source_num"`
	DocID       string `json:"doc_id"`
	Title       string `json:"title"`
	TextSnippet string `json:"text_snippet"`
	FullText    string `json:"full_text"`
}

// Result is a completed pipeline answer.
type Result struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Question   string   `json:"question"`
	NumSources int      `json:"num_sources"`
	// Degraded marks answers produced after a generation failure: the
	// Answer holds an error notice instead of model output, but the
	// retrieval sources are still valid.
	Degraded bool `json:"-"`
}
