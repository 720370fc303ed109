package corpus

import (
	"fmt"

	"github.com/kailas-cloud/ragdex/internal/domain/chunk"
)

// Entry is a chunk plus its embedding, the persisted and retrievable unit.
// Immutable after creation; the store holding entries is rebuilt wholesale,
// never patched in place.
type Entry struct {
	chunk     chunk.Chunk
	embedding []float32
	metadata  map[string]string
}

// NewEntry validates and creates an Entry.
func NewEntry(c chunk.Chunk, embedding []float32, metadata map[string]string) (Entry, error) {
	if len(embedding) == 0 {
		return Entry{}, fmt.Errorf("embedding is required for chunk %s", c.ID())
	}
	return Entry{chunk: c, embedding: embedding, metadata: metadata}, nil
}

// Chunk returns the embedded chunk.
func (e Entry) Chunk() chunk.Chunk { return e.chunk }

// Embedding returns the chunk's embedding vector.
func (e Entry) Embedding() []float32 { return e.embedding }

// Metadata returns the entry metadata (source title etc.).
func (e Entry) Metadata() map[string]string { return e.metadata }
