package config

import (
	"errors"
	"testing"
)

// validConfig returns a configuration that passes Validate with the gemini
// provider, assuming GEMINI_API_KEY is set by the test.
func validConfig() *Config {
	return &Config{
		Provider:      ProviderGemini,
		ModelName:     "gemini-2.5-flash",
		Temperature:   0.3,
		TopP:          0.9,
		MaxTokens:     500,
		EmbedderModel: DefaultGeminiEmbedderModel,
		TopK:          5,
		ChunkSize:     500,
		ChunkOverlap:  50,
		DocsDir:       "documents",
		IndexPath:     "policy_index",
	}
}

func TestValidate_Success(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() failed on valid config: %v", err)
	}
}

func TestValidate_NilConfig(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("expected ErrConfigNil, got %v", err)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if err := validConfig().Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "anthropic-direct" },
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.ModelName = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "temperature too high",
			mutate:  func(c *Config) { c.Temperature = 1.5 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "negative temperature",
			mutate:  func(c *Config) { c.Temperature = -0.1 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "zero top_p",
			mutate:  func(c *Config) { c.TopP = 0 },
			wantErr: ErrInvalidTopP,
		},
		{
			name:    "zero max tokens",
			mutate:  func(c *Config) { c.MaxTokens = 0 },
			wantErr: ErrInvalidMaxTokens,
		},
		{
			name:    "empty embedder model",
			mutate:  func(c *Config) { c.EmbedderModel = "" },
			wantErr: ErrInvalidEmbedderModel,
		},
		{
			name:    "zero top_k",
			mutate:  func(c *Config) { c.TopK = 0 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "top_k above cap",
			mutate:  func(c *Config) { c.TopK = MaxTopK + 1 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "overlap equals chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = c.ChunkSize },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "negative overlap",
			mutate:  func(c *Config) { c.ChunkOverlap = -1 },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "empty docs dir",
			mutate:  func(c *Config) { c.DocsDir = "" },
			wantErr: ErrInvalidDocsDir,
		},
		{
			name:    "empty index path",
			mutate:  func(c *Config) { c.IndexPath = "" },
			wantErr: ErrInvalidIndexPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "test-key")

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_OllamaHost(t *testing.T) {
	cfg := validConfig()
	cfg.Provider = ProviderOllama
	cfg.OllamaHost = "localhost:11434" // missing scheme

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidOllamaHost) {
		t.Errorf("expected ErrInvalidOllamaHost, got %v", err)
	}

	cfg.OllamaHost = "http://localhost:11434"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() failed on valid ollama config: %v", err)
	}
}

func TestFullModelName(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		model    string
		want     string
	}{
		{"gemini default", ProviderGemini, "gemini-2.5-flash", "googleai/gemini-2.5-flash"},
		{"ollama", ProviderOllama, "llama3.3", "ollama/llama3.3"},
		{"openai", ProviderOpenAI, "gpt-4o-mini", "openai/gpt-4o-mini"},
		{"already qualified", ProviderGemini, "googleai/gemini-2.5-pro", "googleai/gemini-2.5-pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Provider: tt.provider, ModelName: tt.model}
			if got := cfg.FullModelName(); got != tt.want {
				t.Errorf("FullModelName() = %q, want %q", got, tt.want)
			}
		})
	}
}
