package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// DefaultTopK is the default number of chunks retained after ranking.
const DefaultTopK = 3

// DefaultThreshold is the default minimum cosine similarity for a match.
const DefaultThreshold = 0.7

// Service retrieves the most relevant corpus chunks for a query: it embeds
// the query with the RETRIEVAL_QUERY task and runs the full-scan cosine
// ranking over the loaded snapshot.
type Service struct {
	corpus    Corpus
	embedder  Embedder
	topK      int
	threshold float64
}

// New creates a retrieval service.
func New(c Corpus, embedder Embedder, topK int, threshold float64) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{corpus: c, embedder: embedder, topK: topK, threshold: threshold}
}

// Retrieve embeds the query and ranks the corpus against it. An empty result
// means no chunk cleared the threshold; that is the caller's fallback case,
// not an error.
func (s *Service) Retrieve(ctx context.Context, query string) ([]corpus.Match, error) {
	snap, err := s.corpus.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	embResult, err := s.embedder.Embed(ctx, query, domain.TaskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	matches, err := snap.Search(embResult.Embedding, s.topK, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("search corpus: %w", err)
	}

	metrics.RetrievalChunksReturned.Observe(float64(len(matches)))
	if len(matches) == 0 {
		metrics.RetrievalFallbackTotal.Inc()
	}

	return matches, nil
}
