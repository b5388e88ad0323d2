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
	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/config"
	"github.com/kailas-cloud/docrank/internal/db"
	dbRedis "github.com/kailas-cloud/docrank/internal/db/redis"
	"github.com/kailas-cloud/docrank/internal/domain"
	logpkg "github.com/kailas-cloud/docrank/internal/logger"
	"github.com/kailas-cloud/docrank/internal/metrics"
	documentrepo "github.com/kailas-cloud/docrank/internal/repository/document"
	"github.com/kailas-cloud/docrank/internal/repository/embcache"
	indexrepo "github.com/kailas-cloud/docrank/internal/repository/index"
	"github.com/kailas-cloud/docrank/internal/repository/vectorstate"
	"github.com/kailas-cloud/docrank/internal/scoring"
	chiTransport "github.com/kailas-cloud/docrank/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/docrank/internal/transport/openai"
	documentuc "github.com/kailas-cloud/docrank/internal/usecase/document"
	rankuc "github.com/kailas-cloud/docrank/internal/usecase/rank"
	retrievaluc "github.com/kailas-cloud/docrank/internal/usecase/retrieval"
	"github.com/kailas-cloud/docrank/internal/vectorizer/remote"
	"github.com/kailas-cloud/docrank/internal/vectorizer/tfidf"
	"github.com/kailas-cloud/docrank/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docrank API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("vectorizer", cfg.Vectorizer.Provider),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterCoreMetrics()
	metrics.RegisterHTTPMetrics()

	vec := buildVectorizer(cfg, store, logger)

	docRepo := documentrepo.New(store, cfg.Storage.KeyPrefix)
	vecIndex := indexrepo.New(store, cfg.Storage.KeyPrefix, vec.Dimension()).
		WithHNSW(indexrepo.HNSWConfig{
			M:           cfg.Scoring.HNSWM,
			EFConstruct: cfg.Scoring.HNSWEFConstruct,
		})
	if err := vecIndex.Ensure(ctx); err != nil {
		// Retrieval degrades to full scans without the index.
		logger.Warn("Vector index unavailable", zap.Error(err))
	}

	weights := domain.DefaultWeights()
	if !cfg.Scoring.Weights.IsZero() {
		weights = domain.Weights{
			KnowledgeQuality: cfg.Scoring.Weights.KnowledgeQuality,
			Completeness:     cfg.Scoring.Weights.Completeness,
			Relevance:        cfg.Scoring.Weights.Relevance,
			Freshness:        cfg.Scoring.Weights.Freshness,
			Engagement:       cfg.Scoring.Weights.Engagement,
		}
	}

	similarity := scoring.NewSimilarity(vec)
	scorer := scoring.NewScorer(similarity, weights).
		WithFreshnessDecay(scoring.FreshnessDecay{
			AgeDays:   cfg.Scoring.FreshAgeDays,
			StaleDays: cfg.Scoring.StaleDays,
		}).
		WithEngagementCaps(scoring.EngagementCaps{
			Views:    cfg.Scoring.ViewsCap,
			Likes:    cfg.Scoring.LikesCap,
			Comments: cfg.Scoring.CommentsCap,
		})

	ranker := rankuc.New(scorer).WithWorkers(cfg.Scoring.Workers)
	docSvc := documentuc.New(docRepo, vecIndex, vec, logger).
		WithPagination(cfg.Scoring.DefaultPageSize, cfg.Scoring.MaxPageSize)
	retrievalSvc := retrievaluc.New(docRepo, vecIndex, ranker, scorer, similarity, vec, logger).
		WithOversample(cfg.Scoring.Oversample)

	server := chiTransport.NewServer(docSvc, retrievalSvc, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
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

// buildVectorizer assembles the vectorization chain for the configured
// provider: corpus TF-IDF with persisted state, or a remote embedding model
// behind the cache.
func buildVectorizer(cfg config.Config, store db.Store, logger *zap.Logger) domain.Vectorizer {
	switch cfg.Vectorizer.Provider {
	case "openai":
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Vectorizer.APIKey,
			BaseURL:    cfg.Vectorizer.BaseURL,
			Model:      cfg.Vectorizer.Model,
			Dimensions: cfg.Vectorizer.Dimension,
			Provider:   cfg.Vectorizer.Provider,
			Logger:     logger,
		})
		cached := embcache.New(
			base, store, cfg.Storage.KeyPrefix,
			time.Duration(cfg.Vectorizer.CacheTTLSec)*time.Second, logger,
		)
		return remote.New(cached, cfg.Vectorizer.Dimension, logger)
	default:
		stateStore := vectorstate.New(store, cfg.Storage.KeyPrefix)
		return tfidf.New(cfg.Vectorizer.Dimension, logger).
			WithStateStore(context.Background(), stateStore)
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
						"code":    "internal_error",
						"message": "internal error",
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

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
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
