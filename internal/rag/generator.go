package rag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Generator produces an answer from a system message and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GenerationConfig tunes the model call.
type GenerationConfig struct {
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GenkitGenerator is the production Generator backed by a Genkit instance.
type GenkitGenerator struct {
	g      *genkit.Genkit
	cfg    GenerationConfig
	logger *slog.Logger
}

func NewGenkitGenerator(g *genkit.Genkit, cfg GenerationConfig, logger *slog.Logger) *GenkitGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenkitGenerator{g: g, cfg: cfg, logger: logger}
}

func (gg *GenkitGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.cfg.ModelName),
		ai.WithSystem(system),
		ai.WithPrompt(prompt),
		ai.WithConfig(&ai.GenerationCommonConfig{
			MaxOutputTokens: gg.cfg.MaxTokens,
			Temperature:     float64(gg.cfg.Temperature),
			TopP:            float64(gg.cfg.TopP),
		}),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
