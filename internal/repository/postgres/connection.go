package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"library/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Folders        string
	ContentPublic  string
	ContentPrivate string
	Interactions   string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Folders:        fmt.Sprintf("%sfolders", prefix),
		ContentPublic:  fmt.Sprintf("%scontent_public", prefix),
		ContentPrivate: fmt.Sprintf("%scontent_private", prefix),
		Interactions:   fmt.Sprintf("%suser_interactions", prefix),
	}
}

// All lists every table in dependency order (referenced tables first)
func (t *TableNames) All() []string {
	return []string{t.Folders, t.ContentPublic, t.ContentPrivate, t.Interactions}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// Supabase's transaction pooler (port 6543) does not support prepared statements, so on
// that port the pool switches to QueryExecModeCacheDescribe unless the connection string
// already sets default_query_exec_mode. Direct connections keep the default.
//
// Table prefixes are interpolated with fmt.Sprintf before a statement is sent, so each
// environment gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by ctx, or pool when there is none.
// Repositories call it for every statement so they join an open transaction.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
