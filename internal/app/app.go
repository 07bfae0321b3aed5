// Package app wires the application together: Genkit provider plugins, the
// embedder, the vector index, the ingestor, and the question answering
// pipeline, all driven by the loaded configuration.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/genkit"

	"github.com/koopa0/policyrag/internal/config"
	"github.com/koopa0/policyrag/internal/embed"
	"github.com/koopa0/policyrag/internal/index"
	"github.com/koopa0/policyrag/internal/ingest"
	"github.com/koopa0/policyrag/internal/rag"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit   *genkit.Genkit
	Embedder *embed.Embedder
	Index    *index.Client
	Ingestor *ingest.Ingestor
	Pipeline *rag.Pipeline

	// Lifecycle management
	otelCleanup func()
}

// Close gracefully shuts down all resources. Safe to call more than once
// and on a partially constructed App.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
		a.otelCleanup = nil
	}

	return nil
}
