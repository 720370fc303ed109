package search

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
)

// Corpus supplies the snapshot loaded at boot.
type Corpus interface {
	Snapshot() (corpus.Snapshot, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string, task domain.TaskType) (domain.EmbeddingResult, error)
}
