package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"library/internal/repository/postgres"
)

func main() {
	dbURL := os.Getenv("SUPABASE_DB_URL")
	if dbURL == "" {
		log.Fatal("SUPABASE_DB_URL environment variable is required")
	}

	// Read environment to determine table prefix
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}
	if env == "prod" {
		log.Fatal("refusing to drop tables in prod")
	}

	prefix := os.Getenv("TABLE_PREFIX")
	if prefix == "" {
		prefix = env + "_"
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	// Dependants first
	tables := postgres.NewTableNames(prefix).All()
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + tables[i] + " CASCADE"); err != nil {
			log.Fatalf("Failed to drop %s: %v", tables[i], err)
		}
	}

	fmt.Printf("All library tables dropped (prefix: %s)\n", prefix)
}
