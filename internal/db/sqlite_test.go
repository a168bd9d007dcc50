package db

import (
	"context"
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database, err := NewSQLite("file:schematest1?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx); err != nil {
		t.Fatalf("first ensure schema: %v", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		t.Fatalf("second ensure schema: %v", err)
	}

	// Both tables accept rows after setup.
	if _, err := database.SQL.ExecContext(ctx,
		`INSERT INTO users (username, password) VALUES ('alice', 'hash')`); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if _, err := database.SQL.ExecContext(ctx,
		`INSERT INTO students (name, age, city, image) VALUES ('Alice', 21, 'Cairo', 'a.png')`); err != nil {
		t.Fatalf("insert student: %v", err)
	}
}

func TestEnsureSchemaAddsImageColumn(t *testing.T) {
	database, err := NewSQLite("file:schematest2?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	// A students table from before the image column existed.
	_, err = database.SQL.ExecContext(ctx, `CREATE TABLE students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		age INTEGER,
		city TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}

	if err := database.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	hasImage, err := database.sqliteHasColumn(ctx, "students", "image")
	if err != nil {
		t.Fatalf("inspect table: %v", err)
	}
	if !hasImage {
		t.Fatal("expected image column after migration")
	}

	if _, err := database.SQL.ExecContext(ctx,
		`INSERT INTO students (name, image) VALUES ('Alice', 'a.png')`); err != nil {
		t.Fatalf("insert with image: %v", err)
	}
}
