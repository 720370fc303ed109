package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/chunk"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
	"github.com/kailas-cloud/ragdex/internal/domain/document"
)

// RawDocument is one record of the ingestion input (docs.json).
type RawDocument struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Report summarizes one rebuild run.
type Report struct {
	Documents  int // documents ingested
	Skipped    int // documents skipped as malformed or empty
	Chunks     int // entries written to the snapshot
	Dimensions int // embedding dimensionality of the written snapshot
}

// Service is the build-time pipeline: documents are chunked, batch-embedded
// with the RETRIEVAL_DOCUMENT task, and written to the snapshot as a full
// replacement of any prior contents. A malformed document never fails the
// run: it is skipped and counted.
type Service struct {
	chunker  Chunker
	embedder Embedder
	writer   Writer
	logger   *zap.Logger
}

// New creates an ingest service.
func New(chunker Chunker, embedder Embedder, writer Writer, logger *zap.Logger) *Service {
	return &Service{chunker: chunker, embedder: embedder, writer: writer, logger: logger}
}

// Rebuild runs the full pipeline over the given documents.
func (s *Service) Rebuild(ctx context.Context, docs []RawDocument) (Report, error) {
	var report Report
	var chunks []chunk.Chunk
	titles := make(map[string]string)

	for i, raw := range docs {
		doc, ok := s.normalize(i, raw)
		if !ok {
			report.Skipped++
			continue
		}

		docChunks := s.chunker.Split(doc)
		s.logger.Info("Document chunked",
			zap.String("document_id", doc.ID()),
			zap.String("title", doc.Title()),
			zap.Int("chunks", len(docChunks)),
		)

		report.Documents++
		titles[doc.ID()] = doc.Title()
		chunks = append(chunks, docChunks...)
	}

	entries, dims, err := s.embedChunks(ctx, chunks, titles)
	if err != nil {
		return Report{}, err
	}

	if err := s.writer.Save(ctx, entries); err != nil {
		return Report{}, fmt.Errorf("save snapshot: %w", err)
	}

	report.Chunks = len(entries)
	report.Dimensions = dims
	return report, nil
}

// normalize applies the skip-and-report policy: a missing id gets a
// synthesized one, empty or invalid content drops the document.
func (s *Service) normalize(index int, raw RawDocument) (document.Document, bool) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = fmt.Sprintf("unknown_%d", index+1)
	}

	doc, err := document.New(id, raw.Title, raw.Content)
	if err != nil {
		s.logger.Warn("Skipping document",
			zap.Int("index", index),
			zap.String("document_id", id),
			zap.Error(err),
		)
		return document.Document{}, false
	}
	return doc, true
}

func (s *Service) embedChunks(
	ctx context.Context, chunks []chunk.Chunk, titles map[string]string,
) ([]corpus.Entry, int, error) {
	if len(chunks) == 0 {
		return nil, 0, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text()
	}

	result, err := s.embedder.BatchEmbed(ctx, texts, domain.TaskTypeDocument)
	if err != nil {
		return nil, 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(result.Embeddings) != len(chunks) {
		return nil, 0, fmt.Errorf(
			"embedder returned %d embeddings for %d chunks", len(result.Embeddings), len(chunks))
	}

	entries := make([]corpus.Entry, len(chunks))
	for i := range chunks {
		entry, err := corpus.NewEntry(chunks[i], result.Embeddings[i], map[string]string{
			"title": titles[chunks[i].DocumentID()],
		})
		if err != nil {
			return nil, 0, fmt.Errorf("build entry %s: %w", chunks[i].ID(), err)
		}
		entries[i] = entry
	}

	// Catches a provider returning mixed dimensionality before anything is
	// written.
	snap, err := corpus.NewSnapshot(entries)
	if err != nil {
		return nil, 0, fmt.Errorf("validate entries: %w", err)
	}

	return entries, snap.Dimensions(), nil
}
