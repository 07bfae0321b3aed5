package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/koopa0/policyrag/internal/config"
	"github.com/koopa0/policyrag/internal/log"
)

func TestStatsPath(t *testing.T) {
	tests := []struct {
		indexPath string
		want      string
	}{
		{"policy_index", "ingestion_stats.json"},
		{filepath.Join("var", "data", "policy_index"), filepath.Join("var", "data", "ingestion_stats.json")},
	}

	for _, tt := range tests {
		if got := statsPath(tt.indexPath); got != tt.want {
			t.Errorf("statsPath(%q) = %q, want %q", tt.indexPath, got, tt.want)
		}
	}
}

func TestProvideOtelShutdownDisabled(t *testing.T) {
	cleanup := provideOtelShutdown(context.Background(), config.TracingConfig{}, log.NewNop())
	if cleanup == nil {
		t.Fatal("cleanup func is nil")
	}
	// No exporter was configured, so this must be a no-op.
	cleanup()
}

func TestCloseOnPartialApp(t *testing.T) {
	a := &App{Logger: log.NewNop()}
	if err := a.Close(); err != nil {
		t.Errorf("Close() on empty app error = %v", err)
	}
	// Idempotent.
	if err := a.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
