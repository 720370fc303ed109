package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/chunk"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
)

// entryDTO is the persisted representation of one corpus entry. The same
// bytes are written by both drivers (file contents == redis value).
type entryDTO struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"documentId"`
	Text       string            `json:"text"`
	Position   int               `json:"position"`
	Embedding  []float32         `json:"embedding"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// encodeEntries serializes entries as a JSON array of records.
func encodeEntries(entries []corpus.Entry) ([]byte, error) {
	dtos := make([]entryDTO, len(entries))
	for i := range entries {
		c := entries[i].Chunk()
		dtos[i] = entryDTO{
			ID:         c.ID(),
			DocumentID: c.DocumentID(),
			Text:       c.Text(),
			Position:   c.Position(),
			Embedding:  entries[i].Embedding(),
			Metadata:   entries[i].Metadata(),
		}
	}

	data, err := json.MarshalIndent(dtos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// decodeSnapshot parses persisted bytes into a validated corpus snapshot.
// Structural problems (not a JSON array, wrong field types, missing or empty
// embeddings, inconsistent dimensionality) map to ErrSnapshotInvalid.
func decodeSnapshot(data []byte) (corpus.Snapshot, error) {
	var dtos []entryDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return corpus.Snapshot{}, fmt.Errorf("parse snapshot: %v: %w", err, domain.ErrSnapshotInvalid)
	}

	entries := make([]corpus.Entry, 0, len(dtos))
	for i, dto := range dtos {
		if dto.DocumentID == "" || dto.Text == "" {
			return corpus.Snapshot{}, fmt.Errorf(
				"entry %d is missing documentId or text: %w", i, domain.ErrSnapshotInvalid)
		}
		if len(dto.Embedding) == 0 {
			return corpus.Snapshot{}, fmt.Errorf(
				"entry %d (%s) is missing its embedding: %w", i, dto.ID, domain.ErrSnapshotInvalid)
		}

		c := chunk.Reconstruct(dto.DocumentID, dto.Text, dto.Position)
		entry, err := corpus.NewEntry(c, dto.Embedding, dto.Metadata)
		if err != nil {
			return corpus.Snapshot{}, fmt.Errorf("entry %d: %v: %w", i, err, domain.ErrSnapshotInvalid)
		}
		entries = append(entries, entry)
	}

	snap, err := corpus.NewSnapshot(entries)
	if err != nil {
		return corpus.Snapshot{}, fmt.Errorf("build snapshot: %v: %w", err, domain.ErrSnapshotInvalid)
	}
	return snap, nil
}
