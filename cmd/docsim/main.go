package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsim/internal/config"
	dbRedis "github.com/kailas-cloud/docsim/internal/db/redis"
	"github.com/kailas-cloud/docsim/internal/domain"
	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
	domsim "github.com/kailas-cloud/docsim/internal/domain/similarity"
	logpkg "github.com/kailas-cloud/docsim/internal/logger"
	"github.com/kailas-cloud/docsim/internal/metrics"
	creditrepo "github.com/kailas-cloud/docsim/internal/repository/credit"
	documentrepo "github.com/kailas-cloud/docsim/internal/repository/document"
	"github.com/kailas-cloud/docsim/internal/repository/embcache"
	"github.com/kailas-cloud/docsim/internal/repository/sqlite"
	chiTransport "github.com/kailas-cloud/docsim/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/docsim/internal/transport/openai"
	analyticsuc "github.com/kailas-cloud/docsim/internal/usecase/analytics"
	creditsuc "github.com/kailas-cloud/docsim/internal/usecase/credit"
	documentuc "github.com/kailas-cloud/docsim/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/docsim/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/docsim/internal/usecase/health"
	matchuc "github.com/kailas-cloud/docsim/internal/usecase/match"
	"github.com/kailas-cloud/docsim/internal/usecase/similarity"
	"github.com/kailas-cloud/docsim/internal/version"
)

// documentStore is what every backend provides to the use cases.
type documentStore interface {
	Insert(ctx context.Context, doc domdoc.Document) (domdoc.Document, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domdoc.Document, error)
	ListAll(ctx context.Context) ([]domdoc.Document, error)
}

// backend bundles the repositories of one storage driver.
type backend struct {
	docs   documentStore
	ledger creditsuc.Ledger
	pinger healthuc.StorePinger
	redis  *dbRedis.Store // nil unless driver is redis
	close  func()
}

func main() {
	mintToken := flag.String("mint-token", "", "print a bearer token for user[:role] and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of a minted token")
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if *mintToken != "" {
		if err := printToken(cfg.Auth, *mintToken, *tokenTTL); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docsim API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("algorithm", cfg.Matching.Algorithm),
	)

	ctx := context.Background()
	store, err := openBackend(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.close()
	logger.Info("Connected to database")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchMetrics()

	alg, err := domsim.Parse(cfg.Matching.Algorithm)
	if err != nil {
		logger.Fatal("Invalid matching algorithm", zap.Error(err))
	}

	var embedder *embeddinguc.InstrumentedEmbedder
	if alg == domsim.Embedding {
		embedder = buildEmbedder(cfg.Embedding, store.redis, logger)
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
			zap.Bool("cache", cfg.Embedding.Cache),
		)
	}

	var scorerEmbedder similarity.Embedder
	if embedder != nil {
		scorerEmbedder = withPrefix(embedder, cfg.Embedding.Prefix)
	}
	scorer, err := similarity.New(alg, scorerEmbedder,
		similarity.WithBatchSize(cfg.Matching.BatchSize),
		similarity.WithParallelism(cfg.Matching.Parallelism),
	)
	if err != nil {
		logger.Fatal("Failed to create scorer", zap.Error(err))
	}

	// Use case services
	creditSvc := creditsuc.New(store.ledger, cfg.Credits.DailyAllowance)
	docSvc := documentuc.New(store.docs, creditSvc)
	matchSvc := matchuc.New(store.docs, scorer).
		WithThreshold(cfg.Matching.ThresholdFor(alg)).
		WithDiffContext(cfg.Matching.DiffContext).
		WithTopicsK(cfg.Matching.TopicsK)
	analyticsSvc := analyticsuc.New(store.docs, cfg.Analytics.TopUsers)

	// Pass a nil interface, not a typed nil pointer, when there is no provider.
	var embeddingChecker healthuc.EmbeddingChecker
	if embedder != nil {
		embeddingChecker = embedder
	}
	healthSvc := healthuc.New(store.pinger, embeddingChecker)

	server := chiTransport.NewServer(docSvc, matchSvc, creditSvc, analyticsSvc, healthSvc)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Issuer))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func openBackend(ctx context.Context, cfg config.DatabaseConfig) (backend, error) {
	switch cfg.Driver {
	case "redis":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return backend{}, fmt.Errorf("create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return backend{}, fmt.Errorf("redis not ready: %w", err)
		}
		return backend{
			docs:   documentrepo.New(store),
			ledger: creditrepo.New(store, creditrepo.DefaultTTL),
			pinger: store,
			redis:  store,
			close:  store.Close,
		}, nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return backend{}, err
		}
		return backend{
			docs:   db.Documents(),
			ledger: db.Ledger(),
			pinger: db,
			close:  db.Close,
		}, nil
	default:
		return backend{}, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(cfg config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger) *embeddinguc.InstrumentedEmbedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var inner domain.Embedder = base
	if cfg.Cache && store != nil {
		// Dimensions are part of the vector identity.
		model := fmt.Sprintf("%s:%d", cfg.Model, cfg.Dimensions)
		inner = embcache.New(base, store, model, metrics.EmbeddingCacheTotal, logger).
			WithTTL(time.Duration(cfg.CacheTTLHours) * time.Hour)
	}

	return embeddinguc.NewInstrumentedEmbedder(inner, cfg.Provider, cfg.Model, logger,
		embeddinguc.WithTimeout(time.Duration(cfg.TimeoutSec)*time.Second),
		embeddinguc.WithMaxBatch(cfg.MaxBatch),
	)
}

// withPrefix wraps the whole chain, so cache keys include the prefix.
func withPrefix(e domain.Embedder, prefix string) domain.Embedder {
	if prefix == "" {
		return e
	}
	return domain.NewPrefixedEmbedder(e, prefix)
}

func printToken(auth config.AuthConfig, who string, ttl time.Duration) error {
	user, role, _ := strings.Cut(who, ":")
	if user == "" {
		return errors.New("mint-token: user is required")
	}
	p := domain.Principal{UserID: user, Role: domain.Role(role)}
	if p.Role == "" {
		p.Role = domain.RoleUser
	}
	tok, err := chiTransport.IssueToken(auth.JWTSecret, auth.Issuer, p, ttl)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
