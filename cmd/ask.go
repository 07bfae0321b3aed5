package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/koopa0/policyrag/internal/app"
	"github.com/koopa0/policyrag/internal/config"
	"github.com/koopa0/policyrag/internal/rag"
)

var (
	askTopK   int
	askRerank bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-off question about the indexed policies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askRerank, "rerank", false, "apply lexical reranking to retrieved chunks")
	rootCmd.AddCommand(askCmd)
}

func runAsk(ctx context.Context, question string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

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

	if err := a.Index.EnsureReady(ctx); err != nil {
		return fmt.Errorf("preparing index: %w", err)
	}

	result, err := a.Pipeline.Query(ctx, question, rag.QueryOptions{
		TopK:   askTopK,
		Rerank: askRerank,
	})
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println()
		fmt.Printf("Sources (%d):\n", result.NumSources)
		for _, s := range result.Sources {
			fmt.Printf("  [%d] %s - %s\n", s.Num, s.DocID, s.Title)
		}
	}
	return nil
}
