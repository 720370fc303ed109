package corpus

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Snapshot is the full embedded corpus, loaded once and read-only thereafter.
// Concurrent reads require no synchronization.
type Snapshot struct {
	entries []Entry
	dims    int
}

// NewSnapshot validates entries and builds a Snapshot. All embeddings must
// share the same dimensionality; an empty entry set is a valid empty corpus.
func NewSnapshot(entries []Entry) (Snapshot, error) {
	if len(entries) == 0 {
		return Snapshot{}, nil
	}

	dims := len(entries[0].embedding)
	for i := range entries {
		if len(entries[i].embedding) != dims {
			return Snapshot{}, fmt.Errorf(
				"entry %s has %d dimensions, expected %d: %w",
				entries[i].chunk.ID(), len(entries[i].embedding), dims,
				domain.ErrVectorDimMismatch,
			)
		}
	}

	return Snapshot{entries: entries, dims: dims}, nil
}

// Len returns the number of entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Dimensions returns the embedding dimensionality (0 for an empty corpus).
func (s *Snapshot) Dimensions() int { return s.dims }

// Entries returns all entries in ingestion order.
func (s *Snapshot) Entries() []Entry { return s.entries }

// Match pairs an entry with its similarity score against a query.
type Match struct {
	entry Entry
	score float64
}

// Entry returns the matched entry.
func (m Match) Entry() Entry { return m.entry }

// Score returns the cosine similarity in [-1, 1].
func (m Match) Score() float64 { return m.score }

// Search ranks every stored vector against the query by cosine similarity:
// full scan, no index. Entries scoring strictly below threshold are dropped,
// the rest sorted descending with ties broken by ingestion order, then
// truncated to k. Pure function of its inputs.
func (s *Snapshot) Search(query []float32, k int, threshold float64) ([]Match, error) {
	if k <= 0 || len(s.entries) == 0 {
		return nil, nil
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf(
			"query has %d dimensions, corpus has %d: %w",
			len(query), s.dims, domain.ErrVectorDimMismatch,
		)
	}

	matches := make([]Match, 0, len(s.entries))
	for i := range s.entries {
		score := Cosine(query, s.entries[i].embedding)
		if score < threshold {
			continue
		}
		matches = append(matches, Match{entry: s.entries[i], score: score})
	}

	// Stable sort keeps ingestion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Cosine computes the cosine similarity between two vectors: dot product over
// the product of magnitudes. Returns 0 for empty, zero-norm, or mismatched
// vectors.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
