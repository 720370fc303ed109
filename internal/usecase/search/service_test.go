package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/chunk"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
)

type stubCorpus struct {
	snap corpus.Snapshot
	err  error
}

func (s *stubCorpus) Snapshot() (corpus.Snapshot, error) {
	return s.snap, s.err
}

type stubEmbedder struct {
	embedding []float32
	err       error
	lastTask  domain.TaskType
}

func (s *stubEmbedder) Embed(_ context.Context, _ string, task domain.TaskType) (domain.EmbeddingResult, error) {
	s.lastTask = task
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: s.embedding}, nil
}

func buildSnapshot(t *testing.T, vectors ...[]float32) corpus.Snapshot {
	t.Helper()
	entries := make([]corpus.Entry, len(vectors))
	for i, v := range vectors {
		e, err := corpus.NewEntry(chunk.Reconstruct("doc", "text", i), v, nil)
		if err != nil {
			t.Fatalf("build entry: %v", err)
		}
		entries[i] = e
	}
	snap, err := corpus.NewSnapshot(entries)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	return snap
}

func TestRetrieve_UsesQueryTask(t *testing.T) {
	emb := &stubEmbedder{embedding: []float32{1, 0}}
	svc := New(&stubCorpus{snap: buildSnapshot(t, []float32{1, 0})}, emb, 3, 0.7)

	matches, err := svc.Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if emb.lastTask != domain.TaskTypeQuery {
		t.Errorf("task = %v, want query", emb.lastTask)
	}
	if len(matches) != 1 {
		t.Errorf("matches = %d", len(matches))
	}
}

func TestRetrieve_SnapshotErrorPropagates(t *testing.T) {
	svc := New(&stubCorpus{err: domain.ErrStoreNotReady}, &stubEmbedder{}, 3, 0.7)

	_, err := svc.Retrieve(context.Background(), "question")
	if !errors.Is(err, domain.ErrStoreNotReady) {
		t.Errorf("expected ErrStoreNotReady, got %v", err)
	}
}

func TestRetrieve_EmbedErrorPropagates(t *testing.T) {
	emb := &stubEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := New(&stubCorpus{snap: buildSnapshot(t, []float32{1, 0})}, emb, 3, 0.7)

	_, err := svc.Retrieve(context.Background(), "question")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestRetrieve_ThresholdFiltersAll(t *testing.T) {
	// Query vector is orthogonal to the single corpus vector.
	emb := &stubEmbedder{embedding: []float32{0, 1}}
	svc := New(&stubCorpus{snap: buildSnapshot(t, []float32{1, 0})}, emb, 3, 0.7)

	matches, err := svc.Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestRetrieve_TruncatesToTopK(t *testing.T) {
	emb := &stubEmbedder{embedding: []float32{1, 0}}
	snap := buildSnapshot(t,
		[]float32{1, 0},
		[]float32{0.9, 0.1},
		[]float32{0.8, 0.2},
		[]float32{0.7, 0.3},
	)
	svc := New(&stubCorpus{snap: snap}, emb, 2, 0.0)

	matches, err := svc.Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Score() < matches[1].Score() {
		t.Errorf("matches not ordered by score: %v, %v", matches[0].Score(), matches[1].Score())
	}
}

func TestNew_DefaultsTopK(t *testing.T) {
	svc := New(&stubCorpus{}, &stubEmbedder{}, 0, 0.7)
	if svc.topK != DefaultTopK {
		t.Errorf("topK = %d, want %d", svc.topK, DefaultTopK)
	}
}
