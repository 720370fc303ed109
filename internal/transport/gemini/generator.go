package gemini

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// GeneratorConfig configures the Gemini generation transport.
type GeneratorConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	Timeout         time.Duration
}

// Generator produces completions through the Gemini generateContent API.
type Generator struct {
	client *genai.Client
	cfg    GeneratorConfig
	logger *zap.Logger
}

// NewGenerator creates a Gemini generation transport.
func NewGenerator(ctx context.Context, cfg GeneratorConfig, logger *zap.Logger) (*Generator, error) {
	client, err := newClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("gemini generator: %w", err)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini generator: model is required")
	}
	return &Generator{client: client, cfg: cfg, logger: logger}, nil
}

// Generate runs a single-turn completion for the given prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.cfg.Temperature),
	}
	if g.cfg.MaxOutputTokens > 0 {
		config.MaxOutputTokens = g.cfg.MaxOutputTokens
	}

	callCtx, cancel := withTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(callCtx, g.cfg.Model, genai.Text(prompt), config)
	duration := time.Since(start)

	metrics.GenerationRequestDuration.WithLabelValues(providerName, g.cfg.Model).Observe(duration.Seconds())

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.cfg.Model, "error").Inc()
		g.logger.Warn("Gemini generation failed",
			zap.String("model", g.cfg.Model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.GenerationResult{}, classify(err, domain.ErrGenerationProviderError)
	}

	result := domain.GenerationResult{Text: resp.Text()}
	if resp.UsageMetadata != nil {
		result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		result.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)

		metrics.GenerationTokensTotal.WithLabelValues(providerName, g.cfg.Model, "prompt").
			Add(float64(result.PromptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(providerName, g.cfg.Model, "completion").
			Add(float64(result.CompletionTokens))
	}

	metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.cfg.Model, "success").Inc()

	g.logger.Debug("Gemini generation completed",
		zap.String("model", g.cfg.Model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
	)

	return result, nil
}
