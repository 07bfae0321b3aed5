// Package api exposes the question answering service over HTTP as a small
// JSON API: POST /chat, GET /health, GET /documents.
package api

import (
	"errors"
	"log/slog"
	"net/http"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger    *slog.Logger
	Pipeline  QueryPipeline  // Required
	Index     IndexStatus    // Required
	Documents DocumentLister // Required

	TrustProxy bool // Trust X-Real-IP/X-Forwarded-For headers (behind reverse proxy)
	RateBurst  int  // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("query pipeline is required")
	}
	if cfg.Index == nil {
		return nil, errors.New("index status is required")
	}
	if cfg.Documents == nil {
		return nil, errors.New("document lister is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{pipeline: cfg.Pipeline, logger: logger}
	dh := &documentsHandler{lister: cfg.Documents, logger: logger}
	hh := &healthHandler{index: cfg.Index, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", ch.ask)
	mux.HandleFunc("GET /documents", dh.list)

	// Rate limiter: per-IP token bucket (1 token/sec refill)
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux keeps health probes outside the rate limiter so an
	// aggressive client cannot starve orchestrator checks.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", hh.check)
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
