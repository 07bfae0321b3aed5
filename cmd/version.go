package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/koopa0/policyrag/internal/config"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return runVersion(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(w io.Writer, cfg *config.Config) error {
	fmt.Fprintf(w, "policyrag %s\n", AppVersion)
	fmt.Fprintf(w, "Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "  Provider: %s\n", cfg.Provider)
	fmt.Fprintf(w, "  Model: %s\n", cfg.ModelName)
	fmt.Fprintf(w, "  Embedder: %s\n", cfg.EmbedderModel)
	fmt.Fprintf(w, "  Temperature: %.2f\n", cfg.Temperature)
	fmt.Fprintf(w, "  Max tokens: %d\n", cfg.MaxTokens)
	fmt.Fprintf(w, "  Top-k: %d\n", cfg.TopK)
	fmt.Fprintf(w, "  Documents: %s\n", cfg.DocsDir)
	fmt.Fprintf(w, "  Index: %s\n", cfg.IndexPath)

	// Show API key presence without leaking it.
	key := os.Getenv("GEMINI_API_KEY")
	switch {
	case len(key) >= 8:
		fmt.Fprintf(w, "  GEMINI_API_KEY: %s...%s (configured)\n", key[:4], key[len(key)-4:])
	case key != "":
		fmt.Fprintln(w, "  GEMINI_API_KEY: configured")
	default:
		fmt.Fprintln(w, "  GEMINI_API_KEY: Not set")
	}

	return nil
}
