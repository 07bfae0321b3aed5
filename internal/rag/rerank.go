package rag

import (
	"sort"
	"strings"
)

// Rerank reorders chunks by lexical overlap with the query: the number of
// distinct lowercase words shared between query and chunk text. Sorting is
// stable, so ties keep their retrieval order. A cross-encoder would do this
// better; overlap is cheap and has no model dependency.
func Rerank(query string, chunks []Chunk) []Chunk {
	queryTerms := termSet(query)

	type scoredChunk struct {
		chunk Chunk
		score int
	}
	scored := make([]scoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = scoredChunk{chunk: c, score: overlap(queryTerms, termSet(c.Text))}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := make([]Chunk, len(scored))
	for i, s := range scored {
		out[i] = s.chunk
	}
	return out
}

func termSet(s string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		terms[w] = struct{}{}
	}
	return terms
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}
