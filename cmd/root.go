// Package cmd contains the policyrag command line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/koopa0/policyrag/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "policyrag",
	Short: "Question answering service for company policy documents",
	Long: `policyrag indexes a directory of policy documents and answers
questions about them with cited sources.

Typical usage:
  policyrag ingest          Index the documents directory
  policyrag serve           Start the HTTP API
  policyrag ask <question>  Ask a one-off question from the terminal`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger. DEBUG in the environment enables
// debug level; POLICYRAG_LOG_JSON switches to JSON output for collectors.
func newLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	if os.Getenv("POLICYRAG_LOG_JSON") != "" {
		cfg.JSON = true
	}
	return log.New(cfg)
}
