package migration

import (
	"database/sql"
	"os"
	"testing"
	"testing/fstest"

	_ "github.com/lib/pq"
)

// setupPostgresTestDB opens POSTGRES_TEST_URL, e.g.
// POSTGRES_TEST_URL="postgres://user@localhost:5432/testdb?sslmode=disable"
func setupPostgresTestDB(t *testing.T) *sql.DB {
	t.Helper()
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open postgres database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping postgres database: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DROP TABLE IF EXISTS schema_version")
		db.Exec("DROP TABLE IF EXISTS test_rows")
		db.Exec("DROP TABLE IF EXISTS test_sheets")
		db.Close()
	})
	return db
}

func postgresTableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)", name).Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check %s table: %v", name, err)
	}
	return exists
}

func TestPostgresApplyMigrations(t *testing.T) {
	db := setupPostgresTestDB(t)

	fsys := fstest.MapFS{
		"001_sheets.sql": {Data: []byte(`CREATE TABLE test_sheets (name TEXT PRIMARY KEY);`)},
	}
	runner, err := NewRunner(db, fsys, DriverPostgres)
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}

	count, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied, got %d", count)
	}

	fsys["002_rows.sql"] = &fstest.MapFile{Data: []byte(`
		CREATE TABLE test_rows (
			sheet TEXT NOT NULL REFERENCES test_sheets(name),
			row_num INTEGER NOT NULL
		);
	`)}
	count, err = runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("incremental ApplyMigrations failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 more migration applied, got %d", count)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
	if !postgresTableExists(t, db, "test_sheets") || !postgresTableExists(t, db, "test_rows") {
		t.Error("expected both tables to exist")
	}
}

func TestPostgresMigrationRollbackOnError(t *testing.T) {
	db := setupPostgresTestDB(t)

	runner, err := NewRunner(db, fstest.MapFS{
		"001_bad.sql": {Data: []byte(`
			CREATE TABLE test_sheets (name TEXT PRIMARY KEY);
			THIS IS INVALID SQL;
		`)},
	}, DriverPostgres)
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 after failed migration, got %d", version)
	}
	if postgresTableExists(t, db, "test_sheets") {
		t.Error("test_sheets should not exist after rollback")
	}
}
