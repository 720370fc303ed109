package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/config"
	"github.com/kailas-cloud/ragdex/internal/db"
	dbRedis "github.com/kailas-cloud/ragdex/internal/db/redis"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
	logpkg "github.com/kailas-cloud/ragdex/internal/logger"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/repository/embcache"
	sessionrepo "github.com/kailas-cloud/ragdex/internal/repository/session"
	"github.com/kailas-cloud/ragdex/internal/repository/snapshot"
	chiTransport "github.com/kailas-cloud/ragdex/internal/transport/chi"
	"github.com/kailas-cloud/ragdex/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/ragdex/internal/transport/openai"
	chatuc "github.com/kailas-cloud/ragdex/internal/usecase/chat"
	embeddinguc "github.com/kailas-cloud/ragdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/ragdex/internal/usecase/search"
	"github.com/kailas-cloud/ragdex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ragdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("generation_provider", cfg.Generation.Provider),
	)

	ctx := context.Background()

	metrics.RegisterProviderMetrics()

	// Redis is needed when it backs the snapshot or the embedding cache.
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
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Redis.Addrs))
	}

	embedder, embedderHealth := buildEmbedder(ctx, cfg, store, logger)
	generator := buildGenerator(ctx, cfg, logger)

	// Load the snapshot once at boot. A failed load keeps the process alive:
	// probes need a live endpoint to report not-ready.
	loaded := loadSnapshot(ctx, cfg, store, logger)

	sessions := sessionrepo.New()
	searchSvc := searchuc.New(loaded, embedder, cfg.Retrieval.TopK, cfg.Retrieval.Threshold)
	chatSvc := chatuc.New(searchSvc, generator, sessions, logger)
	healthSvc := healthuc.New(loaded, embedderHealth)

	server := chiTransport.NewServer(chatSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// snapshotLoader is what both snapshot drivers expose to boot.
type snapshotLoader interface {
	Load(ctx context.Context) (corpus.Snapshot, error)
}

// loadSnapshot loads the configured snapshot driver's contents into an
// immutable in-process holder.
func loadSnapshot(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) *snapshot.Loaded {
	var repo snapshotLoader
	switch cfg.Store.Driver {
	case "redis":
		repo = snapshot.NewRedisRepository(store, cfg.Store.Key)
	default:
		repo = snapshot.NewFileRepository(cfg.Store.Path)
	}

	var loaded *snapshot.Loaded
	if snap, err := repo.Load(ctx); err != nil {
		loaded = snapshot.NewLoadFailed(err)
	} else {
		loaded = snapshot.NewLoaded(snap)
	}

	if loaded.Ready() {
		snap, _ := loaded.Snapshot()
		logger.Info("Vector snapshot loaded",
			zap.String("driver", cfg.Store.Driver),
			zap.Int("entries", snap.Len()),
			zap.Int("dimensions", snap.Dimensions()),
		)
	} else {
		logger.Error("Vector snapshot load failed, serving not-ready",
			zap.String("driver", cfg.Store.Driver),
			zap.Error(loaded.LoadErr()),
		)
	}
	return loaded
}

// buildEmbedder assembles the decorator chain:
// provider -> instruction (openai only) -> cache -> instrumented.
func buildEmbedder(
	ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger,
) (domain.Embedder, healthuc.ProviderChecker) {
	var base domain.Embedder
	var health healthuc.ProviderChecker

	switch cfg.Embedding.Provider {
	case "openai":
		oa := openaiTransport.NewEmbedder(openaiTransport.EmbedderConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		}, logger)
		health = oa
		// The OpenAI-compatible API has no task-type parameter; instruction
		// prefixes keep document and query vectors role-consistent.
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
		health = ge
		base = ge
	}

	embedder := base
	if cfg.Cache.Enabled && store != nil {
		embedder = embcache.New(embedder, store, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger)
	}

	instrumented := embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger,
	)

	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	return instrumented, health
}

func buildGenerator(ctx context.Context, cfg config.Config, logger *zap.Logger) domain.Generator {
	switch cfg.Generation.Provider {
	case "openai":
		return openaiTransport.NewGenerator(openaiTransport.GeneratorConfig{
			APIKey:      cfg.Generation.APIKey,
			BaseURL:     cfg.Generation.BaseURL,
			Model:       cfg.Generation.Model,
			Temperature: cfg.Generation.Temperature,
			MaxTokens:   cfg.Generation.MaxOutputTokens,
			Timeout:     time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		}, logger)
	default:
		gen, err := gemini.NewGenerator(ctx, gemini.GeneratorConfig{
			APIKey:          cfg.Generation.APIKey,
			Model:           cfg.Generation.Model,
			Temperature:     cfg.Generation.Temperature,
			MaxOutputTokens: int32(cfg.Generation.MaxOutputTokens),
			Timeout:         time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create generation provider", zap.Error(err))
		}
		return gen
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error.",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
