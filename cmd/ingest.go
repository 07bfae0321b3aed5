package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koopa0/policyrag/internal/app"
	"github.com/koopa0/policyrag/internal/config"
)

var ingestReset bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse, chunk, embed, and index the documents directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runIngest(cmd.Context())
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "drop the existing collection before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	if ingestReset {
		if err := a.Index.Reset(); err != nil {
			return fmt.Errorf("resetting index: %w", err)
		}
		logger.Info("dropped existing collection")
	}

	stats, err := a.Ingestor.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("ingesting documents: %w", err)
	}

	fmt.Printf("Ingestion complete: %d documents, %d chunks\n", stats.TotalDocs, stats.TotalChunks)
	for _, d := range stats.Documents {
		fmt.Printf("  %-30s %-12s %4d chunks  (%s)\n", d.File, d.DocID, d.Chunks, d.Title)
	}
	return nil
}
