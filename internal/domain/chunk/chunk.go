package chunk

import (
	"fmt"
	"strings"
)

// Chunk is a retrieval-sized slice of a document (immutable value object).
// Its ID is deterministic: "<documentID>:<position>".
type Chunk struct {
	documentID string
	text       string
	position   int
}

// New validates and creates a Chunk.
func New(documentID, text string, position int) (Chunk, error) {
	if documentID == "" {
		return Chunk{}, fmt.Errorf("document ID is required")
	}
	if strings.TrimSpace(text) == "" {
		return Chunk{}, fmt.Errorf("chunk text is required")
	}
	if position < 0 {
		return Chunk{}, fmt.Errorf("position must be non-negative, got %d", position)
	}
	return Chunk{documentID: documentID, text: text, position: position}, nil
}

// Reconstruct creates a Chunk without validation (storage hydration).
func Reconstruct(documentID, text string, position int) Chunk {
	return Chunk{documentID: documentID, text: text, position: position}
}

// ID returns the deterministic chunk identifier.
func (c Chunk) ID() string { return fmt.Sprintf("%s:%d", c.documentID, c.position) }

// DocumentID returns the source document identifier.
func (c Chunk) DocumentID() string { return c.documentID }

// Text returns the chunk text.
func (c Chunk) Text() string { return c.text }

// Position returns the chunk ordinal within its document.
func (c Chunk) Position() int { return c.position }
