package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"library/internal/auth"
	"library/internal/config"
	"library/internal/domain/models/library"
	"library/internal/domain/repositories"
	libraryRepo "library/internal/domain/repositories/library"
	"library/internal/handler"
	"library/internal/metrics"
	"library/internal/middleware"
	"library/internal/repository"
	"library/internal/repository/memory"
	"library/internal/repository/postgres"
	postgresLibrary "library/internal/repository/postgres/library"
	redisRepo "library/internal/repository/redis"
	"library/internal/service/analytics"
	libraryService "library/internal/service/library"
	"library/internal/service/pdfview"
	"library/internal/storage/relayclient"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg.Environment, cfg.LogDir, "server", cfg.LogMaxFiles)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()
	m := metrics.New("library")

	// Repositories: Postgres when configured, in-process otherwise
	var (
		folderRepo   libraryRepo.FolderRepository
		router       *repository.Router
		interactions libraryRepo.InteractionRepository
		txManager    repositories.TransactionManager
		dbPinger     handler.Pinger
	)
	if cfg.SupabaseDBURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()
		logger.Info("database connected")

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		folderRepo = postgresLibrary.NewFolderRepository(repoConfig)
		router = repository.NewRouter(
			postgresLibrary.NewContentRepository(repoConfig, library.VisibilityPublic),
			postgresLibrary.NewContentRepository(repoConfig, library.VisibilityPrivate),
		)
		interactions = postgresLibrary.NewInteractionRepository(repoConfig)
		txManager = postgres.NewTransactionManager(pool, logger)
		dbPinger = pool
	} else {
		if cfg.Environment == "prod" {
			log.Fatal("SUPABASE_DB_URL is required in prod")
		}
		logger.Warn("SUPABASE_DB_URL not set, using in-memory repositories (data is lost on restart)")
		db := memory.NewDB()
		folderRepo = memory.NewFolderRepository(db)
		router = repository.NewRouter(
			memory.NewContentRepository(db, library.VisibilityPublic),
			memory.NewContentRepository(db, library.VisibilityPrivate),
		)
		interactions = memory.NewInteractionRepository(db)
		txManager = memory.NewTransactionManager(db)
	}

	// Viewer state
	var viewerState libraryRepo.ViewerStateStore
	if cfg.RedisURL != "" {
		client, err := redisRepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		viewerState = redisRepo.NewViewerStateRepository(client, logger)
		logger.Info("viewer state stored in redis")
	} else {
		viewerState = memory.NewViewerStateRepository()
		logger.Info("viewer state kept in memory")
	}

	// Storage relay client
	allowedTypes, err := config.LoadAllowedTypes(cfg.StorageTypesFile)
	if err != nil {
		log.Fatalf("Failed to load storage types: %v", err)
	}
	uploader := relayclient.New(cfg.RelayURL, cfg.MaxUploadBytes, allowedTypes, logger)

	// Services
	recorder := analytics.NewRecorder(router, interactions, logger, analytics.WithMetrics(m))
	folderService := libraryService.NewFolderService(folderRepo, router, txManager, logger)
	contentService := libraryService.NewContentService(folderRepo, router, interactions, txManager, logger)
	adminWorkflow := libraryService.NewAdminWorkflow(folderService, contentService, uploader, logger)
	viewerService := libraryService.NewViewerService(folderService, contentService, recorder, viewerState, logger)
	renderer := pdfview.NewRenderer(nil, cfg.MaxUploadBytes, logger)

	api := &handler.API{
		Folders: handler.NewFolderHandler(folderService, contentService, adminWorkflow, logger),
		Content: handler.NewContentHandler(contentService, adminWorkflow, cfg.MaxUploadBytes, logger),
		Admin:   handler.NewAdminHandler(folderService, contentService, logger),
		Viewer:  handler.NewViewerHandler(viewerService, logger),
		PDF:     handler.NewPDFHandler(contentService, viewerService, renderer, pdfview.NewNavigator(renderer, 0, logger), logger),
		Health:  handler.NewHealthHandler(dbPinger, logger),
	}

	// Admin routes need a Supabase session
	var requireAdmin func(http.Handler) http.Handler
	if cfg.SupabaseURL != "" {
		verifier, err := auth.NewJWKSVerifier(ctx, cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
		requireAdmin = middleware.RequireAuth(verifier, logger)
	} else if cfg.Environment == "prod" {
		log.Fatal("SUPABASE_URL is required in prod")
	} else {
		logger.Warn("SUPABASE_URL not set, admin routes are NOT authenticated")
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	api.Register(mux, requireAdmin)
	mux.Handle("GET /metrics", m.Handler(logger))

	// Build middleware chain
	// Order: CORS → Recovery → Metrics → Routes
	var h http.Handler = mux
	h = middleware.Metrics(m, mux)(h)
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Viewer-Session"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  5 * time.Minute, // Large multipart uploads
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := recorder.Close(shutdownCtx); err != nil {
		logger.Warn("analytics queue not drained", "error", err)
	}
}
