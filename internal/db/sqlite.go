package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Registers the "sqlite3" driver with database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/akhaled/studenthub/internal/pkg/logger"
)

// NewSQLite opens the embedded store at the given path (or DSN) and pings it.
func NewSQLite(path string) (*Database, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to establish sqlite connection: %w", err)
	}

	logger.Info().Str("path", path).Msg("Connected to embedded SQLite store")
	return &Database{SQL: sqlDB, dialect: dialectSQLite}, nil
}

func (d *Database) ensureSQLiteSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS students (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			age INTEGER,
			city TEXT,
			image TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := d.SQL.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Databases created before the image column existed get it added here.
	hasImage, err := d.sqliteHasColumn(ctx, "students", "image")
	if err != nil {
		return err
	}
	if !hasImage {
		if _, err := d.SQL.ExecContext(ctx, `ALTER TABLE students ADD COLUMN image TEXT`); err != nil {
			return fmt.Errorf("failed to add image column: %w", err)
		}
		logger.Info().Msg("Added image column to students table")
	}

	return nil
}

func (d *Database) sqliteHasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := d.SQL.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("failed to scan table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
