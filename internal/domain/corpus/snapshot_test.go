package corpus

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/chunk"
)

func entry(t *testing.T, id string, pos int, emb []float32) Entry {
	t.Helper()
	e, err := NewEntry(chunk.Reconstruct(id, "text of "+id, pos), emb, nil)
	if err != nil {
		t.Fatalf("build entry: %v", err)
	}
	return e
}

func TestCosine_SelfSimilarity(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8}
	got := Cosine(v, v)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Cosine(v, v) = %v, want 1.0", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	got := Cosine([]float32{1, 0}, []float32{0, 1})
	if math.Abs(got) > 1e-9 {
		t.Errorf("Cosine = %v, want 0", got)
	}
}

func TestCosine_Opposite(t *testing.T) {
	got := Cosine([]float32{1, 2}, []float32{-1, -2})
	if math.Abs(got+1.0) > 1e-9 {
		t.Errorf("Cosine = %v, want -1", got)
	}
}

func TestCosine_Degenerate(t *testing.T) {
	if got := Cosine(nil, nil); got != 0 {
		t.Errorf("Cosine(nil, nil) = %v", got)
	}
	if got := Cosine([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("Cosine mismatched lengths = %v", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("Cosine zero-norm = %v", got)
	}
}

func TestNewSnapshot_Empty(t *testing.T) {
	snap, err := NewSnapshot(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Len() != 0 || snap.Dimensions() != 0 {
		t.Errorf("Len=%d Dims=%d", snap.Len(), snap.Dimensions())
	}
}

func TestNewSnapshot_DimMismatch(t *testing.T) {
	entries := []Entry{
		entry(t, "a", 0, []float32{1, 0}),
		entry(t, "b", 0, []float32{1, 0, 0}),
	}
	_, err := NewSnapshot(entries)
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestSearch_EmptyCorpusReturnsNoMatches(t *testing.T) {
	snap, _ := NewSnapshot(nil)
	matches, err := snap.Search([]float32{1, 0}, 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestSearch_QueryDimMismatch(t *testing.T) {
	snap, _ := NewSnapshot([]Entry{entry(t, "a", 0, []float32{1, 0, 0})})
	_, err := snap.Search([]float32{1, 0}, 3, 0)
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestSearch_ThresholdFiltersAndSortsDescending(t *testing.T) {
	snap, _ := NewSnapshot([]Entry{
		entry(t, "low", 0, []float32{0, 1}),      // cosine 0 vs query
		entry(t, "mid", 0, []float32{1, 1}),      // ~0.707
		entry(t, "high", 0, []float32{1, 0.001}), // ~1.0
	})

	matches, err := snap.Search([]float32{1, 0}, 10, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches above threshold, got %d", len(matches))
	}
	if matches[0].Entry().Chunk().DocumentID() != "high" {
		t.Errorf("first match = %q", matches[0].Entry().Chunk().DocumentID())
	}
	if matches[0].Score() < matches[1].Score() {
		t.Error("matches not sorted descending")
	}
}

func TestSearch_TruncatesToK(t *testing.T) {
	entries := []Entry{
		entry(t, "a", 0, []float32{1, 0}),
		entry(t, "b", 0, []float32{1, 0.1}),
		entry(t, "c", 0, []float32{1, 0.2}),
		entry(t, "d", 0, []float32{1, 0.3}),
	}
	snap, _ := NewSnapshot(entries)

	matches, err := snap.Search([]float32{1, 0}, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 matches, got %d", len(matches))
	}
}

func TestSearch_TiesKeepIngestionOrder(t *testing.T) {
	entries := []Entry{
		entry(t, "first", 0, []float32{2, 0}),
		entry(t, "second", 0, []float32{3, 0}), // same direction, same cosine
	}
	snap, _ := NewSnapshot(entries)

	matches, err := snap.Search([]float32{1, 0}, 2, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Entry().Chunk().DocumentID() != "first" {
		t.Errorf("tie order broken: first = %q", matches[0].Entry().Chunk().DocumentID())
	}
}

func TestSearch_KZeroReturnsNothing(t *testing.T) {
	snap, _ := NewSnapshot([]Entry{entry(t, "a", 0, []float32{1, 0})})
	matches, err := snap.Search([]float32{1, 0}, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matches != nil {
		t.Errorf("expected nil matches, got %v", matches)
	}
}

func TestNewEntry_RequiresEmbedding(t *testing.T) {
	_, err := NewEntry(chunk.Reconstruct("a", "text", 0), nil, nil)
	if err == nil {
		t.Fatal("expected error for empty embedding")
	}
}
