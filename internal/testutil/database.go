package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package

	"github.com/invest-earning/event-engine/internal/database"
)

// SetupWalletDB creates an in-memory wallet store for testing. Its schema
// mirrors the one the CRUD API owns in production; the engine only reads
// it. The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    walletDB := testutil.SetupWalletDB(t)
//	    // walletDB is ready to use with schema created
//	}
func SetupWalletDB(t *testing.T) *sql.DB {
	t.Helper()

	db := openMemoryDB(t)
	if err := createWalletSchema(db); err != nil {
		t.Fatalf("Failed to create wallet test schema: %v", err)
	}
	return db
}

// SetupAnalyticDB creates an in-memory analytic store for testing, applying
// the same embedded migrations production runs at startup.
func SetupAnalyticDB(t *testing.T) *sql.DB {
	t.Helper()

	db := openMemoryDB(t)
	if err := database.MigrateAnalytic(db); err != nil {
		t.Fatalf("Failed to migrate analytic test store: %v", err)
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

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA timezone = 'UTC'",
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

// createWalletSchema creates the wallet-store tables the engine reads.
// Foreign keys are deliberately not declared: production ownership of this
// schema lies with the CRUD API, and several tests need dangling references
// (earnings whose asset vanished) to exercise defaulting behavior.
func createWalletSchema(db *sql.DB) error {
	schema := `
		-- Asset table
		CREATE TABLE IF NOT EXISTS asset (
			b3_code VARCHAR(10) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			description TEXT,
			kind VARCHAR(10) NOT NULL,
			added DATE NOT NULL
		);

		-- Earning table
		CREATE TABLE IF NOT EXISTS earning (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			asset_b3_code VARCHAR(10) NOT NULL,
			hold_date DATE NOT NULL,
			payment_date DATE NOT NULL,
			value_per_share FLOAT NOT NULL,
			ir_percentage FLOAT,
			kind VARCHAR(10) NOT NULL
		);

		-- Transaction table (quoted because transaction is a reserved keyword)
		CREATE TABLE IF NOT EXISTS "transaction" (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			asset_b3_code VARCHAR(10) NOT NULL,
			date DATE NOT NULL,
			kind VARCHAR(4) NOT NULL,
			value_per_share FLOAT NOT NULL,
			shares INTEGER NOT NULL
		);

		-- Economic data table
		CREATE TABLE IF NOT EXISTS economic_data (
			"index" VARCHAR(12) NOT NULL,
			reference_date DATE NOT NULL,
			percentage_change FLOAT NOT NULL,
			number_index FLOAT,
			PRIMARY KEY ("index", reference_date)
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS ix_earning_asset_b3_code ON earning(asset_b3_code);
		CREATE INDEX IF NOT EXISTS ix_earning_hold_date ON earning(hold_date);
		CREATE INDEX IF NOT EXISTS ix_transaction_asset_date ON "transaction"(asset_b3_code, date);
	`

	_, err := db.Exec(schema)
	return err
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
//
// Example usage:
//
//	count := testutil.CountRows(t, db, "earning_yield")
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := `SELECT COUNT(*) FROM "` + table + `"`
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "earning_yield", 2)
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
