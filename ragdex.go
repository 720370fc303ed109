// Package ragdex embeds the retrieval-augmented chat pipeline in-process:
// ingest documents, load the vector snapshot, ask grounded questions.
package ragdex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/db"
	dbRedis "github.com/kailas-cloud/ragdex/internal/db/redis"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/chunk"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/repository/embcache"
	sessionrepo "github.com/kailas-cloud/ragdex/internal/repository/session"
	"github.com/kailas-cloud/ragdex/internal/repository/snapshot"
	"github.com/kailas-cloud/ragdex/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/ragdex/internal/transport/openai"
	chatuc "github.com/kailas-cloud/ragdex/internal/usecase/chat"
	ingestuc "github.com/kailas-cloud/ragdex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/ragdex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Embedder is the public embedding contract. task is "RETRIEVAL_DOCUMENT" or
// "RETRIEVAL_QUERY"; implementations may ignore it.
type Embedder interface {
	Embed(ctx context.Context, text string, task string) ([]float32, error)
}

// Generator is the public generation contract.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Document is one unit of ingestion input.
type Document struct {
	ID      string
	Title   string
	Content string
}

// Report summarizes one ingestion run.
type Report struct {
	Documents  int
	Skipped    int
	Chunks     int
	Dimensions int
}

// Answer is the result of one Ask call.
type Answer struct {
	SessionID       string
	Reply           string
	RetrievedChunks int
}

// snapshotRepo is what both snapshot drivers expose to the client.
type snapshotRepo interface {
	Load(ctx context.Context) (corpus.Snapshot, error)
	Save(ctx context.Context, entries []corpus.Entry) error
}

// corpusHolder is a reloadable snapshot holder: unlike the server, the SDK
// can rebuild and reload within one process lifetime.
type corpusHolder struct {
	mu     sync.RWMutex
	loaded *snapshot.Loaded
}

func (h *corpusHolder) Snapshot() (corpus.Snapshot, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loaded.Snapshot()
}

func (h *corpusHolder) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loaded.Ready()
}

func (h *corpusHolder) set(l *snapshot.Loaded) {
	h.mu.Lock()
	h.loaded = l
	h.mu.Unlock()
}

// Client is the ragdex SDK entry point.
type Client struct {
	store     db.Store
	repo      snapshotRepo
	holder    *corpusHolder
	sessions  *sessionrepo.Store
	chatSvc   *chatuc.Service
	ingestSvc *ingestuc.Service
	logger    *zap.Logger
}

// New creates a ragdex Client. The provided context is used for provider
// construction and the redis readiness check. The snapshot is not loaded
// until Load or Ingest is called.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:           "file",
		logger:           zap.NewNop(),
		topK:             searchuc.DefaultTopK,
		threshold:        searchuc.DefaultThreshold,
		overlapSentences: chunk.DefaultOverlapSentences,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	var store db.Store
	if cfg.driver == "redis" {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPass,
		})
		if err != nil {
			return nil, fmt.Errorf("ragdex: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("ragdex: redis not ready: %w", err)
		}
		store = s
	}

	embedder, err := buildEmbedder(ctx, cfg, store)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	generator, err := buildGenerator(ctx, cfg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	var repo snapshotRepo
	if cfg.driver == "redis" {
		repo = snapshot.NewRedisRepository(store, cfg.redisKey)
	} else {
		path := cfg.snapshotPath
		if path == "" {
			path = "data/vector_store.json"
		}
		repo = snapshot.NewFileRepository(path)
	}

	holder := &corpusHolder{
		loaded: snapshot.NewLoadFailed(fmt.Errorf("snapshot not loaded")),
	}

	sessions := sessionrepo.New()
	searchSvc := searchuc.New(holder, embedder, cfg.topK, cfg.threshold)
	chatSvc := chatuc.New(searchSvc, generator, sessions, cfg.logger)

	splitter := chunk.NewSplitter(
		chunk.WithMaxChars(cfg.maxChunkChars),
		chunk.WithMinChars(cfg.minChunkChars),
		chunk.WithOverlapSentences(cfg.overlapSentences),
	)
	batch := batchAdapter{inner: embedder}
	ingestSvc := ingestuc.New(splitter, batch, repo, cfg.logger)

	return &Client{
		store:     store,
		repo:      repo,
		holder:    holder,
		sessions:  sessions,
		chatSvc:   chatSvc,
		ingestSvc: ingestSvc,
		logger:    cfg.logger,
	}, nil
}

// Load reads the snapshot from storage into memory. A missing snapshot is an
// error; Ingest first on a fresh store.
func (c *Client) Load(ctx context.Context) error {
	snap, err := c.repo.Load(ctx)
	if err != nil {
		c.holder.set(snapshot.NewLoadFailed(err))
		return fmt.Errorf("ragdex: load snapshot: %w", err)
	}
	c.holder.set(snapshot.NewLoaded(snap))
	c.logger.Info("Snapshot loaded",
		zap.Int("entries", snap.Len()),
		zap.Int("dimensions", snap.Dimensions()),
	)
	return nil
}

// Ingest rebuilds the snapshot from the given documents as a full replacement
// and reloads it into memory.
func (c *Client) Ingest(ctx context.Context, docs []Document) (Report, error) {
	raw := make([]ingestuc.RawDocument, len(docs))
	for i, d := range docs {
		raw[i] = ingestuc.RawDocument{ID: d.ID, Title: d.Title, Content: d.Content}
	}

	report, err := c.ingestSvc.Rebuild(ctx, raw)
	if err != nil {
		return Report{}, fmt.Errorf("ragdex: ingest: %w", err)
	}

	if err := c.Load(ctx); err != nil {
		return Report{}, err
	}

	return Report{
		Documents:  report.Documents,
		Skipped:    report.Skipped,
		Chunks:     report.Chunks,
		Dimensions: report.Dimensions,
	}, nil
}

// Ask answers one question grounded in the ingested corpus. An empty
// sessionID starts a fresh session with a generated id; reuse the returned
// Answer.SessionID to continue the conversation.
func (c *Client) Ask(ctx context.Context, sessionID, message string) (Answer, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	answer, err := c.chatSvc.Chat(ctx, sessionID, message)
	if err != nil {
		return Answer{}, fmt.Errorf("ragdex: ask: %w", err)
	}

	return Answer{
		SessionID:       sessionID,
		Reply:           answer.Reply,
		RetrievedChunks: answer.RetrievedChunks,
	}, nil
}

// Ready reports whether a snapshot is loaded.
func (c *Client) Ready() bool { return c.holder.Ready() }

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

func buildEmbedder(ctx context.Context, cfg *clientConfig, store db.Store) (domain.Embedder, error) {
	var base domain.Embedder

	switch {
	case cfg.embedder != nil:
		base = &embedderAdapter{inner: cfg.embedder}
	case cfg.openai != nil:
		oa := openaiTransport.NewEmbedder(openaiTransport.EmbedderConfig{
			APIKey:     cfg.openai.apiKey,
			BaseURL:    cfg.openai.baseURL,
			Model:      cfg.openai.model,
			Dimensions: cfg.openai.dimensions,
			Timeout:    cfg.openai.timeout,
		}, cfg.logger)
		base = oa
	case cfg.gemini != nil:
		ge, err := gemini.NewEmbedder(ctx, gemini.EmbedderConfig{
			APIKey:     cfg.gemini.apiKey,
			Model:      cfg.gemini.model,
			Dimensions: cfg.gemini.dimensions,
			Timeout:    cfg.gemini.timeout,
		}, cfg.logger)
		if err != nil {
			return nil, fmt.Errorf("ragdex: create embedder: %w", err)
		}
		base = ge
	default:
		return nil, errors.New("ragdex: embedding provider required (use WithGemini, WithOpenAI, or WithEmbedder)")
	}

	if cfg.cacheEmbeddings && store != nil {
		model := "custom"
		switch {
		case cfg.openai != nil:
			model = cfg.openai.model
		case cfg.gemini != nil:
			model = cfg.gemini.model
		}
		base = embcache.New(base, store, model, metrics.EmbeddingCacheTotal, cfg.logger)
	}

	return base, nil
}

func buildGenerator(ctx context.Context, cfg *clientConfig) (domain.Generator, error) {
	switch {
	case cfg.generator != nil:
		return &generatorAdapter{inner: cfg.generator}, nil
	case cfg.openai != nil:
		return openaiTransport.NewGenerator(openaiTransport.GeneratorConfig{
			APIKey:      cfg.openai.apiKey,
			BaseURL:     cfg.openai.baseURL,
			Model:       cfg.generationModel,
			Temperature: cfg.genTemperature,
			MaxTokens:   cfg.genMaxTokens,
			Timeout:     cfg.openai.timeout,
		}, cfg.logger), nil
	case cfg.gemini != nil:
		gen, err := gemini.NewGenerator(ctx, gemini.GeneratorConfig{
			APIKey:          cfg.gemini.apiKey,
			Model:           cfg.generationModel,
			Temperature:     cfg.genTemperature,
			MaxOutputTokens: int32(cfg.genMaxTokens),
			Timeout:         cfg.gemini.timeout,
		}, cfg.logger)
		if err != nil {
			return nil, fmt.Errorf("ragdex: create generator: %w", err)
		}
		return gen, nil
	default:
		return nil, errors.New("ragdex: generation provider required (use WithGemini, WithOpenAI, or WithGenerator)")
	}
}

// embedderAdapter wraps a public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string, task domain.TaskType) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text, task.String())
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// generatorAdapter wraps a public Generator to satisfy internal domain.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	text, err := a.inner.Generate(ctx, prompt)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}
	return domain.GenerationResult{Text: text}, nil
}

// batchAdapter exposes an Embedder's batch capability to the ingest pipeline,
// falling back to sequential embeds.
type batchAdapter struct {
	inner domain.Embedder
}

func (b batchAdapter) BatchEmbed(ctx context.Context, texts []string, task domain.TaskType) (domain.BatchEmbeddingResult, error) {
	if be, ok := b.inner.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts, task)
	}
	return domain.BatchFallback(ctx, b.inner, texts, task)
}
