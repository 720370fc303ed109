// Command ragdex-ingest rebuilds the vector snapshot from a documents file.
// The rebuild is a full replacement: chunk, embed, write.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/config"
	"github.com/kailas-cloud/ragdex/internal/db"
	dbRedis "github.com/kailas-cloud/ragdex/internal/db/redis"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/chunk"
	logpkg "github.com/kailas-cloud/ragdex/internal/logger"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/repository/embcache"
	"github.com/kailas-cloud/ragdex/internal/repository/snapshot"
	"github.com/kailas-cloud/ragdex/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/ragdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/ragdex/internal/usecase/embedding"
	ingestuc "github.com/kailas-cloud/ragdex/internal/usecase/ingest"
)

func main() {
	docsPath := flag.String("docs", "", "path to the documents JSON file (default from config)")
	outPath := flag.String("out", "", "snapshot file path override (file driver only)")
	env := flag.String("env", config.GetEnv(), "config environment name")
	flag.Parse()

	cfg, err := config.Load(*env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(*env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if *docsPath == "" {
		*docsPath = cfg.Ingest.DocsPath
	}
	if *outPath != "" {
		cfg.Store.Driver = "file"
		cfg.Store.Path = *outPath
	}

	logger.Info("Starting snapshot rebuild",
		zap.String("docs", *docsPath),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
	)

	docs, err := readDocs(*docsPath)
	if err != nil {
		logger.Fatal("Failed to read documents", zap.Error(err))
	}
	logger.Info("Documents loaded", zap.Int("count", len(docs)))

	ctx := context.Background()
	metrics.RegisterProviderMetrics()

	var store db.Store
	if cfg.Store.Driver == "redis" || cfg.Cache.Enabled {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
	}

	splitter := chunk.NewSplitter(
		chunk.WithMaxChars(cfg.Ingest.MaxChunkChars),
		chunk.WithMinChars(cfg.Ingest.MinChunkChars),
		chunk.WithOverlapSentences(cfg.Ingest.OverlapSentences),
	)

	embedder := buildEmbedder(ctx, cfg, store, logger)

	var writer ingestuc.Writer
	switch cfg.Store.Driver {
	case "redis":
		writer = snapshot.NewRedisRepository(store, cfg.Store.Key)
	default:
		writer = snapshot.NewFileRepository(cfg.Store.Path)
	}

	svc := ingestuc.New(splitter, embedder, writer, logger)

	report, err := svc.Rebuild(ctx, docs)
	if err != nil {
		logger.Fatal("Rebuild failed", zap.Error(err))
	}

	logger.Info("Snapshot rebuilt",
		zap.Int("documents", report.Documents),
		zap.Int("skipped", report.Skipped),
		zap.Int("chunks", report.Chunks),
		zap.Int("dimensions", report.Dimensions),
	)
}

func readDocs(path string) ([]ingestuc.RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []ingestuc.RawDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// buildEmbedder mirrors the server's chain so ingest-time document vectors
// match query-time vectors.
func buildEmbedder(
	ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger,
) ingestuc.Embedder {
	var base domain.Embedder

	switch cfg.Embedding.Provider {
	case "openai":
		oa := openaiTransport.NewEmbedder(openaiTransport.EmbedderConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		}, logger)
		base = domain.NewInstructionEmbedder(oa,
			cfg.Embedding.DocumentInstruction, cfg.Embedding.QueryInstruction)
	default:
		ge, err := gemini.NewEmbedder(ctx, gemini.EmbedderConfig{
			APIKey:     cfg.Embedding.APIKey,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create embedding provider", zap.Error(err))
		}
		base = ge
	}

	if cfg.Cache.Enabled && store != nil {
		base = embcache.New(base, store, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(base, cfg.Embedding.Provider, cfg.Embedding.Model, logger)
}
