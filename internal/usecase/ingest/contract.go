package ingest

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/chunk"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
	"github.com/kailas-cloud/ragdex/internal/domain/document"
)

// Chunker splits a document into retrieval-sized chunks.
type Chunker interface {
	Split(doc document.Document) []chunk.Chunk
}

// Embedder vectorizes chunk texts in batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string, task domain.TaskType) (domain.BatchEmbeddingResult, error)
}

// Writer persists the rebuilt snapshot as a full replacement.
type Writer interface {
	Save(ctx context.Context, entries []corpus.Entry) error
}
