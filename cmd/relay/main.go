package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"library/internal/config"
	"library/internal/handler"
	"library/internal/httputil"
	"library/internal/metrics"
	"library/internal/middleware"
	"library/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.LoadRelay()

	logger, logCloser, err := config.NewLogger(cfg.Environment, os.Getenv("LOG_DIR"), "relay", 10)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage backend: %v", err)
	}
	logger.Info("relay starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"backend", cfg.Backend,
		"max_upload_bytes", cfg.MaxUploadBytes,
	)

	m := metrics.New("relay")
	relay := handler.NewRelayHandler(store, cfg.MaxUploadBytes, m, logger)

	mux := http.NewServeMux()
	relay.Register(mux)
	mux.Handle("GET /metrics", m.Handler(logger))
	if mem, ok := store.(*storage.MemoryStore); ok {
		mux.Handle("GET /files/{filename...}", handler.Files(mem))
		logger.Warn("memory backend: objects are lost on restart")
	}

	// Order: CORS → Recovery → Metrics → Routes
	var h http.Handler = mux
	h = middleware.Metrics(m, mux)(h)
	h = middleware.RecoveryWith(logger, httputil.RespondEnvelopeError)(h)

	// The relay is called from browsers on any origin
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start relay: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("relay shutdown failed", "error", err)
	}
}
