package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

const providerName = "gemini"

// EmbedderConfig configures the Gemini embedding transport.
type EmbedderConfig struct {
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// Embedder vectorizes text through the Gemini embedContent API. The task type
// is passed natively, so document and query embeddings share the model while
// staying role-consistent.
type Embedder struct {
	client *genai.Client
	cfg    EmbedderConfig
	logger *zap.Logger
}

// NewEmbedder creates a Gemini embedding transport.
func NewEmbedder(ctx context.Context, cfg EmbedderConfig, logger *zap.Logger) (*Embedder, error) {
	client, err := newClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: %w", err)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini embedder: model is required")
	}
	return &Embedder{client: client, cfg: cfg, logger: logger}, nil
}

// Embed vectorizes a single text.
func (e *Embedder) Embed(ctx context.Context, text string, task domain.TaskType) (domain.EmbeddingResult, error) {
	res, err := e.embed(ctx, []string{text}, task)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed vectorizes multiple texts in one API call.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string, task domain.TaskType) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return e.embed(ctx, texts, task)
}

func (e *Embedder) embed(ctx context.Context, texts []string, task domain.TaskType) (domain.BatchEmbeddingResult, error) {
	if !task.Valid() {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("task %q: %w", task, domain.ErrInvalidTaskType)
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	config := &genai.EmbedContentConfig{TaskType: task.String()}
	if e.cfg.Dimensions > 0 {
		dims := int32(e.cfg.Dimensions)
		config.OutputDimensionality = &dims
	}

	callCtx, cancel := withTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.Models.EmbedContent(callCtx, e.cfg.Model, contents, config)
	duration := time.Since(start)

	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.cfg.Model).Observe(duration.Seconds())

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.cfg.Model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.cfg.Model, errorType(err)).Inc()
		e.logger.Warn("Gemini embedding failed",
			zap.String("model", e.cfg.Model),
			zap.Int("texts", len(texts)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.BatchEmbeddingResult{}, classify(err, domain.ErrEmbeddingProviderError)
	}

	if len(resp.Embeddings) != len(texts) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.cfg.Model, "error").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"gemini returned %d embeddings for %d texts: %w",
			len(resp.Embeddings), len(texts), domain.ErrEmbeddingProviderError)
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.cfg.Model, "error").Inc()
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"gemini returned empty embedding at index %d: %w", i, domain.ErrEmbeddingProviderError)
		}
		embeddings[i] = emb.Values
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.cfg.Model, "success").Inc()

	return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
}

// HealthCheck embeds a short probe text to verify the provider is reachable.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	_, err := e.Embed(ctx, "ping", domain.TaskTypeQuery)
	if err != nil {
		return fmt.Errorf("gemini health check: %w", err)
	}
	return nil
}

func errorType(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "api_error"
}
