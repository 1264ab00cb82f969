package main

import (
	"context"
	"flag"
	"log"
	"os"

	"library/internal/auth"
	"library/internal/config"
	models "library/internal/domain/models/library"
	"library/internal/repository"
	"library/internal/repository/postgres"
	postgresLibrary "library/internal/repository/postgres/library"
	"library/internal/seed"
	libraryService "library/internal/service/library"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed content")
	clearData := flag.Bool("clear-data", false, "Delete all folders and content (keep schema)")
	adminEmail := flag.String("admin-email", "", "Create a confirmed Supabase admin account with this email (password from ADMIN_PASSWORD)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run destructive operations (--drop-tables or --clear-data) in production")
	}

	logger, logCloser, err := config.NewLogger(cfg.Environment, "", "seed", 0)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	if cfg.SupabaseDBURL == "" {
		log.Fatal("SUPABASE_DB_URL is required")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	schema := seed.NewSchema(pool, cfg.TablePrefix, logger)
	logger.Info("seeding",
		"environment", cfg.Environment,
		"prefix", cfg.TablePrefix,
		"drop_tables", *dropTables,
		"schema_only", *schemaOnly,
		"clear_data", *clearData,
	)

	if *dropTables {
		if err := schema.DropAll(ctx); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := schema.Ensure(ctx); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	logger.Info("schema ready")

	if *adminEmail != "" {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" || cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			log.Fatal("--admin-email needs ADMIN_PASSWORD, SUPABASE_URL and SUPABASE_KEY (service role)")
		}
		id, created, err := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey).EnsureUser(ctx, *adminEmail, password)
		if err != nil {
			log.Fatalf("Failed to provision admin account: %v", err)
		}
		logger.Info("admin account ready", "email", *adminEmail, "user_id", id, "created", created)
	}

	if *schemaOnly {
		return
	}

	if *clearData {
		if err := schema.ClearData(ctx); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		logger.Info("data cleared")
		return
	}

	// Seed through the service layer
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: schema.Tables(),
		Logger: logger,
	}
	folderRepo := postgresLibrary.NewFolderRepository(repoConfig)
	router := repository.NewRouter(
		postgresLibrary.NewContentRepository(repoConfig, models.VisibilityPublic),
		postgresLibrary.NewContentRepository(repoConfig, models.VisibilityPrivate),
	)
	interactions := postgresLibrary.NewInteractionRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	folders := libraryService.NewFolderService(folderRepo, router, txManager, logger)
	content := libraryService.NewContentService(folderRepo, router, interactions, txManager, logger)

	if err := schema.ClearData(ctx); err != nil {
		logger.Warn("could not clear existing data", "error", err)
	}
	if err := seed.Library(ctx, folders, content, logger); err != nil {
		log.Fatalf("Failed to seed library: %v", err)
	}
	logger.Info("seeding complete")
}
