package domain

import (
	"context"
	"fmt"
)

// TaskType tags an embedding request with its retrieval role. Document and
// query vectors come from the same model but must be produced under matching
// task types to stay comparable.
type TaskType string

const (
	// TaskTypeDocument marks corpus chunks embedded at ingestion time.
	TaskTypeDocument TaskType = "RETRIEVAL_DOCUMENT"
	// TaskTypeQuery marks user queries embedded at request time.
	TaskTypeQuery TaskType = "RETRIEVAL_QUERY"
)

// Valid reports whether the task type is one of the known values.
func (t TaskType) Valid() bool {
	return t == TaskTypeDocument || t == TaskTypeQuery
}

func (t TaskType) String() string { return string(t) }

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string, task TaskType) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single API call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string, task TaskType) (BatchEmbeddingResult, error)
}

// Generator is the shared text generation contract between layers.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// GenerationResult carries the completion text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// BatchFallback embeds texts one by one. Safety net for providers without
// a native batch call.
func BatchFallback(ctx context.Context, e Embedder, texts []string, task TaskType) (BatchEmbeddingResult, error) {
	embeddings := make([][]float32, len(texts))
	var totalPrompt, totalTokens int

	for i, text := range texts {
		res, err := e.Embed(ctx, text, task)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("fallback embed [%d]: %w", i, err)
		}
		embeddings[i] = res.Embedding
		totalPrompt += res.PromptTokens
		totalTokens += res.TotalTokens
	}

	return BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}

// InstructionEmbedder is a domain decorator that prepends a task-specific
// instruction before embedding, for providers whose API lacks a task-type
// parameter.
type InstructionEmbedder struct {
	inner    Embedder
	document string
	query    string
}

// NewInstructionEmbedder creates a decorator with per-task instruction prefixes.
func NewInstructionEmbedder(inner Embedder, document, query string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, document: document, query: query}
}

func (e *InstructionEmbedder) prefix(task TaskType) string {
	if task == TaskTypeQuery {
		return e.query
	}
	return e.document
}

// Embed prepends the task instruction and delegates to the inner embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string, task TaskType) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.prefix(task)+text, task)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// BatchEmbed prepends the task instruction to each text and delegates to the
// inner BatchEmbedder, falling back to one-by-one Embed calls.
func (e *InstructionEmbedder) BatchEmbed(ctx context.Context, texts []string, task TaskType) (BatchEmbeddingResult, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = e.prefix(task) + t
	}

	if be, ok := e.inner.(BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, prefixed, task)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("instruction batch embed: %w", err)
		}
		return res, nil
	}

	res, err := BatchFallback(ctx, e.inner, prefixed, task)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("instruction batch embed fallback: %w", err)
	}
	return res, nil
}
