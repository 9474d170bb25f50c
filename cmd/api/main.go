package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"task-search-backend/internal/ai"
	"task-search-backend/internal/auth"
	"task-search-backend/internal/config"
	"task-search-backend/internal/db"
	"task-search-backend/internal/embed"
	"task-search-backend/internal/logger"
	"task-search-backend/internal/search"
	"task-search-backend/internal/server"
	"task-search-backend/internal/suggest"
)

const upstreamTimeout = 20 * time.Second

func main() {
	cfg := config.Load()

	lg, err := logger.New(logger.FromConfig(cfg, "task-search-api"))
	if err != nil {
		log.Fatal("failed to build logger:", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: upstreamTimeout}

	var database *sql.DB
	if dsn := cfg.ConnString(); dsn != "" {
		database, err = db.Connect(ctx, dsn)
		if err != nil {
			lg.Fatal("failed to connect DB", zap.Error(err))
		}
		defer database.Close()
		lg.Info("connected to PostgreSQL")
	}

	resolver := newResolver(cfg, httpClient, lg)
	configured := cfg.Supabase.Configured()
	if !configured {
		lg.Warn("SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY not set, function endpoints will answer 500")
	}

	var embedder embed.Embedder
	if e, err := embed.New(embed.Config{
		Host:   cfg.EmbeddingHost,
		Model:  cfg.EmbeddingModel,
		APIKey: cfg.EmbeddingAPIKey,
	}, lg); err != nil {
		lg.Warn("embedder disabled", zap.Error(err))
	} else {
		embedder = e
	}

	var searcher search.SimilaritySearcher
	if database != nil {
		searcher = search.NewPGSearcher(database)
		lg.Info("similarity search via direct database access")
	} else if cfg.Supabase.URL != "" {
		searcher = search.NewRPCSearcher(cfg.Supabase.URL, cfg.Supabase.ServiceKey, httpClient)
		lg.Info("similarity search via REST rpc")
	}

	svc := search.NewService(search.Deps{
		Configured: configured,
		Resolver:   resolver,
		Embedder:   embedder,
		Searcher:   searcher,
	}, search.WithLogger(lg))

	var generator suggest.Generator
	if c, err := ai.New(ai.Config{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	}, lg); err != nil {
		lg.Warn("subtask generation disabled", zap.Error(err))
	} else {
		generator = c
	}

	handler := server.New(server.Handlers{
		Search:  search.NewHandler(svc, lg),
		Suggest: suggest.NewHandler(configured, resolver, generator, lg),
	}, lg)

	ln, err := server.Listen(cfg.Addr(), cfg.MaxConnections)
	if err != nil {
		lg.Fatal("failed to listen", zap.String("addr", cfg.Addr()), zap.Error(err))
	}

	if err := server.Run(ctx, ln, handler, lg); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
	lg.Info("server stopped")
}

// newResolver verifies tokens locally when the JWT secret is known and asks
// the auth service otherwise.
func newResolver(cfg *config.Config, hc *http.Client, lg *zap.Logger) auth.Resolver {
	if cfg.Supabase.JWTSecret != "" {
		lg.Info("verifying access tokens locally")
		return auth.NewJWTResolver([]byte(cfg.Supabase.JWTSecret))
	}
	if cfg.Supabase.URL == "" {
		return nil
	}
	key := cfg.Supabase.AnonKey
	if key == "" {
		key = cfg.Supabase.ServiceKey
	}
	return auth.NewRemoteResolver(cfg.Supabase.URL, key, hc)
}
