// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.policyrag/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: provider, chat model, generation parameters
//   - RAG: embedder model, retrieval top-k, chunking geometry
//   - Index: on-disk vector database location, documents directory
//   - Serve: HTTP listen address, rate limiting
//   - Tracing: optional OTLP export (see observability.go)
//
// Validation happens fail-fast in Load via Validate, which returns sentinel
// errors suitable for errors.Is checks.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidModelName indicates the chat model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidTopP indicates the nucleus sampling value is out of range.
	ErrInvalidTopP = errors.New("invalid top_p")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidTopK indicates the retrieval top-k is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidChunking indicates chunk size and overlap are inconsistent.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrInvalidDocsDir indicates the documents directory is not set.
	ErrInvalidDocsDir = errors.New("invalid documents directory")

	// ErrInvalidIndexPath indicates the vector index path is not set.
	ErrInvalidIndexPath = errors.New("invalid index path")

	// ErrInvalidOllamaHost indicates the Ollama host is invalid.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderOllama   = "ollama"
	ProviderOpenAI   = "openai"
	ProviderGoogleAI = "googleai"
)

const (
	// DefaultGeminiEmbedderModel is the default Gemini embedder model.
	// Whatever model is chosen must stay constant for the lifetime of an
	// index: query and chunk vectors are only comparable when produced by
	// the same embedding model.
	DefaultGeminiEmbedderModel = "gemini-embedding-001"

	// DefaultChunkSize is the chunk window size in words.
	DefaultChunkSize = 500

	// DefaultChunkOverlap is the word overlap between consecutive chunks.
	DefaultChunkOverlap = 50

	// DefaultTopK is the default number of chunks retrieved per query.
	DefaultTopK = 5

	// MaxTopK bounds per-request top_k overrides.
	MaxTopK = 20
)

// Config stores application configuration.
type Config struct {
	// AI provider and model configuration
	Provider    string  `mapstructure:"provider" json:"provider"`     // "gemini" (default), "ollama", "openai"
	ModelName   string  `mapstructure:"model_name" json:"model_name"` // e.g. "gemini-2.5-flash", "llama3.3", "gpt-4o-mini"
	Temperature float32 `mapstructure:"temperature" json:"temperature"`
	TopP        float32 `mapstructure:"top_p" json:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens" json:"max_tokens"`

	// Ollama configuration (only used when provider is "ollama")
	OllamaHost string `mapstructure:"ollama_host" json:"ollama_host"`

	// RAG configuration
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`
	TopK          int    `mapstructure:"retrieval_top_k" json:"retrieval_top_k"`
	ChunkSize     int    `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap  int    `mapstructure:"chunk_overlap" json:"chunk_overlap"`

	// Corpus and index locations
	DocsDir   string `mapstructure:"docs_dir" json:"docs_dir"`
	IndexPath string `mapstructure:"index_path" json:"index_path"`

	// Serve configuration
	Addr      string `mapstructure:"addr" json:"addr"`
	RateBurst int    `mapstructure:"rate_burst" json:"rate_burst"`

	// Tracing configuration (see observability.go)
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".policyrag")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// AI defaults. Low temperature keeps policy answers close to the sources.
	viper.SetDefault("provider", ProviderGemini)
	viper.SetDefault("model_name", "gemini-2.5-flash")
	viper.SetDefault("temperature", 0.3)
	viper.SetDefault("top_p", 0.9)
	viper.SetDefault("max_tokens", 500)

	// Ollama defaults
	viper.SetDefault("ollama_host", "http://localhost:11434")

	// RAG defaults
	viper.SetDefault("embedder_model", DefaultGeminiEmbedderModel)
	viper.SetDefault("retrieval_top_k", DefaultTopK)
	viper.SetDefault("chunk_size", DefaultChunkSize)
	viper.SetDefault("chunk_overlap", DefaultChunkOverlap)

	// Corpus and index defaults
	viper.SetDefault("docs_dir", "documents")
	viper.SetDefault("index_path", "policy_index")

	// Serve defaults
	viper.SetDefault("addr", ":5000")
	viper.SetDefault("rate_burst", 0)

	// Tracing defaults
	viper.SetDefault("tracing.agent_host", "")
	viper.SetDefault("tracing.environment", "dev")
	viper.SetDefault("tracing.service_name", "policyrag")
}

// bindEnvVariables binds environment overrides explicitly.
// Provider API keys (GEMINI_API_KEY, OPENAI_API_KEY) are read directly by the
// Genkit plugins, not through Viper; Validate only checks their presence.
func bindEnvVariables() {
	// Hardcoded keys cannot fail to bind; a panic here is a programming error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("provider", "POLICYRAG_PROVIDER")
	mustBind("model_name", "POLICYRAG_MODEL_NAME")
	mustBind("embedder_model", "POLICYRAG_EMBEDDER_MODEL")
	mustBind("ollama_host", "POLICYRAG_OLLAMA_HOST")
	mustBind("docs_dir", "POLICYRAG_DOCS_DIR")
	mustBind("index_path", "POLICYRAG_INDEX_PATH")
	mustBind("addr", "POLICYRAG_ADDR")
	mustBind("retrieval_top_k", "POLICYRAG_TOP_K")
	mustBind("rate_burst", "POLICYRAG_RATE_BURST")
	mustBind("tracing.agent_host", "POLICYRAG_OTLP_AGENT_HOST")
	mustBind("tracing.environment", "POLICYRAG_ENVIRONMENT")
}

// FullModelName returns the provider-qualified model name for Genkit.
// Examples: "googleai/gemini-2.5-flash", "ollama/llama3.3", "openai/gpt-4o-mini".
// If ModelName already contains a "/", it is returned as-is.
func (c *Config) FullModelName() string {
	if strings.Contains(c.ModelName, "/") {
		return c.ModelName
	}
	switch c.Provider {
	case ProviderOllama:
		return ProviderOllama + "/" + c.ModelName
	case ProviderOpenAI:
		return ProviderOpenAI + "/" + c.ModelName
	default:
		return ProviderGoogleAI + "/" + c.ModelName
	}
}

// String renders the configuration as JSON for log output.
// The config carries no secrets (API keys live only in the environment).
func (c Config) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
