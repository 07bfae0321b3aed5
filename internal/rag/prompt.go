package rag

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every generation request.
const SystemPrompt = "You are a helpful assistant that answers questions about company policies based on provided documents."

// NoResultsAnswer is returned without invoking the model when retrieval
// finds nothing.
const NoResultsAnswer = "I couldn't find any relevant information in the policy documents."

// RefusalAnswer is what the model is instructed to say for questions the
// sources cannot answer. Kept exported so evaluation tooling can match it.
const RefusalAnswer = "I can only answer questions about our company policies, and I don't have information about that in the policy documents."

// promptTemplate carries the grounding guardrails. The instruction wording
// is load-bearing: refusal detection and citation checks match on it.
const promptTemplate = `You are a helpful assistant that answers questions about company policies based ONLY on the provided policy documents.

INSTRUCTIONS:
1. Answer the question using ONLY information from the provided sources below
2. If the answer is not in the sources, say "%s"
3. ALWAYS cite your sources using the format [Source X] where X is the source number
4. Keep your answer concise (under 200 words unless more detail is needed)
5. If multiple policies apply, cite all relevant sources
6. Do not make up information or use external knowledge

POLICY SOURCES:
%s

QUESTION: %s

ANSWER (with citations):`

// BuildPrompt renders the guard-railed prompt. Sources are numbered from 1
// in the order given, and those numbers are the citation labels the answer
// refers back to.
func BuildPrompt(query string, chunks []Chunk) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = fmt.Sprintf("[Source %d: %s - %s]\n%s\n", i+1, c.DocID, c.Title, c.Text)
	}
	context := strings.Join(blocks, "\n")

	return fmt.Sprintf(promptTemplate, RefusalAnswer, context, query)
}
