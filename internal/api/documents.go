package api

import (
	"log/slog"
	"net/http"

	"github.com/koopa0/policyrag/internal/ingest"
)

// DocumentLister reports what the last ingestion run indexed.
type DocumentLister interface {
	Stats() (*ingest.Stats, error)
}

type documentSummary struct {
	DocID  string `json:"doc_id"`
	Title  string `json:"title"`
	Chunks int    `json:"chunks"`
}

type documentsResponse struct {
	Documents      []documentSummary `json:"documents"`
	TotalDocuments int               `json:"total_documents"`
	TotalChunks    int               `json:"total_chunks"`
}

type documentsHandler struct {
	lister DocumentLister
	logger *slog.Logger
}

// list handles GET /documents, aggregating chunk counts per document ID.
func (h *documentsHandler) list(w http.ResponseWriter, r *http.Request) {
	stats, err := h.lister.Stats()
	if err != nil {
		requestID, _ := requestIDFromContext(r.Context())
		h.logger.Error("reading ingestion stats", "error", err, "request_id", requestID)
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	resp := documentsResponse{Documents: []documentSummary{}}
	if stats == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	// Merge by doc_id: a corpus may hold the same policy in two files.
	byID := make(map[string]int)
	for _, d := range stats.Documents {
		if _, seen := byID[d.DocID]; !seen {
			byID[d.DocID] = len(resp.Documents)
			resp.Documents = append(resp.Documents, documentSummary{DocID: d.DocID, Title: d.Title})
		}
		resp.Documents[byID[d.DocID]].Chunks += d.Chunks
		resp.TotalChunks += d.Chunks
	}
	resp.TotalDocuments = len(resp.Documents)

	writeJSON(w, http.StatusOK, resp)
}
