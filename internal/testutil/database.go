package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package

	"github.com/madame-president/normaDB/internal/database"
)

// SetupTxDB creates an in-memory transaction store for testing with the
// production migrations applied. The database is cleaned up when the
// test completes.
func SetupTxDB(t *testing.T) *sql.DB {
	t.Helper()

	db := openMemoryDB(t)
	if err := database.MigrateTransactionStore(db); err != nil {
		t.Fatalf("Failed to migrate test transaction store: %v", err)
	}
	return db
}

// SetupPriceDB creates an in-memory price store for testing with the
// production migrations applied.
func SetupPriceDB(t *testing.T) *sql.DB {
	t.Helper()

	db := openMemoryDB(t)
	if err := database.MigratePriceStore(db); err != nil {
		t.Fatalf("Failed to migrate test price store: %v", err)
	}
	return db
}

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every pooled connection to ":memory:" gets its own database;
	// pin the pool to one connection so all queries see the same data.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}
