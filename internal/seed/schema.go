// Package seed creates the library schema and fills a database with sample content.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"library/internal/repository/postgres"
)

// Schema manages the library tables of one environment
type Schema struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	prefix string
	logger *slog.Logger
}

// NewSchema creates a schema manager for the tables named by prefix
func NewSchema(pool *pgxpool.Pool, prefix string, logger *slog.Logger) *Schema {
	return &Schema{
		pool:   pool,
		tables: postgres.NewTableNames(prefix),
		prefix: prefix,
		logger: logger,
	}
}

// Tables returns the prefixed table names
func (s *Schema) Tables() *postgres.TableNames {
	return s.tables
}

// Ensure creates missing tables and indexes
func (s *Schema) Ensure(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS ` + s.tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title VARCHAR(255) NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			custom_url VARCHAR(255),
			description TEXT NOT NULL DEFAULT '',
			is_public BOOLEAN NOT NULL DEFAULT TRUE,
			table_name VARCHAR(63) NOT NULL CHECK (table_name ~ '^[a-z_]+$'),
			parent_id UUID REFERENCES ` + s.tables.Folders + `(id) ON DELETE CASCADE,
			folder_type TEXT NOT NULL DEFAULT 'root' CHECK (folder_type IN ('root', 'sub_root')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK ((folder_type = 'root') = (parent_id IS NULL))
		)`,

		s.contentTable(s.tables.ContentPublic),
		s.contentTable(s.tables.ContentPrivate),

		`CREATE TABLE IF NOT EXISTS ` + s.tables.Interactions + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			content_id UUID NOT NULL,
			interaction_type TEXT NOT NULL,
			last_page INTEGER,
			duration INTEGER,
			user_agent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_` + s.prefix + `folders_parent ON ` + s.tables.Folders + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + s.prefix + `content_public_type ON ` + s.tables.ContentPublic + `(type)`,
		`CREATE INDEX IF NOT EXISTS idx_` + s.prefix + `content_private_type ON ` + s.tables.ContentPrivate + `(type)`,
		`CREATE INDEX IF NOT EXISTS idx_` + s.prefix + `interactions_content ON ` + s.tables.Interactions + `(content_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// contentTable is the DDL shared by the public and private content tables. The
// (folder_id, display_order) constraint is deferrable so a swap can run as one UPDATE.
func (s *Schema) contentTable(name string) string {
	return `CREATE TABLE IF NOT EXISTS ` + name + ` (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		folder_id UUID NOT NULL REFERENCES ` + s.tables.Folders + `(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('pdf', 'video', 'audio', 'image', 'link')),
		url TEXT,
		external_url TEXT,
		thumbnail_url TEXT,
		description TEXT NOT NULL DEFAULT '',
		file_size BIGINT,
		display_order INTEGER NOT NULL,
		view_count INTEGER NOT NULL DEFAULT 0,
		last_page INTEGER,
		last_viewed_at TIMESTAMPTZ,
		custom_url VARCHAR(255),
		slug TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (url IS NOT NULL OR external_url IS NOT NULL),
		CONSTRAINT ` + name + `_folder_order_key UNIQUE (folder_id, display_order) DEFERRABLE INITIALLY IMMEDIATE
	)`
}

// DropAll drops every library table, dependants first
func (s *Schema) DropAll(ctx context.Context) error {
	all := s.tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+all[i]+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
		s.logger.Info("dropped table", "table", all[i])
	}
	return nil
}

// ClearData deletes every row and keeps the schema
func (s *Schema) ClearData(ctx context.Context) error {
	all := s.tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := s.pool.Exec(ctx, "DELETE FROM "+all[i]); err != nil {
			return fmt.Errorf("clear %s: %w", all[i], err)
		}
	}
	return nil
}
