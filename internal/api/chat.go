package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/koopa0/policyrag/internal/config"
	"github.com/koopa0/policyrag/internal/index"
	"github.com/koopa0/policyrag/internal/rag"
)

// maxChatBodyBytes caps the /chat request body.
const maxChatBodyBytes = 1 << 16

// queryTimeout bounds a single retrieval + generation round trip. It must
// stay under the server write timeout or the client sees a dropped
// connection instead of an error body.
const queryTimeout = 90 * time.Second

// QueryPipeline answers a question against the indexed corpus.
type QueryPipeline interface {
	Query(ctx context.Context, question string, opts rag.QueryOptions) (*rag.Result, error)
}

type chatRequest struct {
	Question  string `json:"question"`
	TopK      int    `json:"top_k"`
	UseRerank bool   `json:"use_rerank"`
}

type chatResponse struct {
	*rag.Result
	LatencyMS int64 `json:"latency_ms"`
}

type chatHandler struct {
	pipeline QueryPipeline
	logger   *slog.Logger
}

// ask handles POST /chat.
func (h *chatHandler) ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Missing required field: question",
			Example: map[string]string{"question": "How many PTO days do I get?"},
		})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "Question cannot be empty", "")
		return
	}

	// Cap the requested retrieval depth; non-positive values fall back to
	// the configured default inside the retriever.
	topK := req.TopK
	if topK > config.MaxTopK {
		topK = config.MaxTopK
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	start := time.Now()

	result, err := h.pipeline.Query(ctx, question, rag.QueryOptions{
		TopK:   topK,
		Rerank: req.UseRerank,
	})
	if err != nil {
		requestID, _ := requestIDFromContext(r.Context())
		h.logger.Error("query failed", "error", err, "request_id", requestID)

		if errors.Is(err, index.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "Vector index unavailable", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Result:    result,
		LatencyMS: time.Since(start).Milliseconds(),
	})
}
