// Package db is the storage adapter: one connection type backed by either
// the embedded SQLite store or a networked PostgreSQL store, selected once
// at startup from configuration.
package db

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/akhaled/studenthub/internal/config"
)

// Database wraps the shared connection pool together with the dialect
// knowledge the repositories need (placeholder format, schema DDL).
type Database struct {
	SQL     *sql.DB
	dialect dialect
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// New opens a connection to the configured store. The backend is a pure
// function of one configuration value: a database URL selects PostgreSQL,
// its absence selects the embedded SQLite file. No fallback, no retry.
func New(cfg *config.Config) (*Database, error) {
	if cfg.UsesNetworkStore() {
		return NewPostgres(cfg.Database.URL)
	}
	return NewSQLite(cfg.Database.Path)
}

// Builder returns a squirrel statement builder using the placeholder
// format of the active backend.
func (d *Database) Builder() squirrel.StatementBuilderType {
	if d.dialect == dialectPostgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// EnsureSchema creates the users and students tables when absent and
// applies the additive image-column migration. It runs idempotently on
// every startup.
func (d *Database) EnsureSchema(ctx context.Context) error {
	if d.dialect == dialectPostgres {
		return d.ensurePostgresSchema(ctx)
	}
	return d.ensureSQLiteSchema(ctx)
}

// Close closes the underlying pool.
func (d *Database) Close() error {
	if d.SQL != nil {
		return d.SQL.Close()
	}
	return nil
}
