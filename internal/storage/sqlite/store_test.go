package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/lifeos/internal/storage"
	"github.com/julianstephens/lifeos/internal/storage/storagetest"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "lifeos.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		return setupTestStore(t)
	})
}

func TestInitIsRepeatable(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Init(); err != nil {
		t.Errorf("second Init() error = %v", err)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := s.Load(); err == nil {
		t.Error("Load() should fail when the database file does not exist")
	}
}

func TestLoadAfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifeos.db")
	first := NewStore(path)
	if err := first.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	table, err := first.Table(context.Background(), "habits", []string{"date", "habit", "completed"})
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	if _, err := table.Append(context.Background(), []string{"2026-10-19", "walk", "1"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	first.Close()

	second := NewStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer second.Close()

	reopened, err := second.Table(context.Background(), "habits", []string{"date", "habit", "completed"})
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	rows, err := reopened.Find(context.Background(), storage.All)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Field(1) != "walk" {
		t.Errorf("rows after reload = %+v", rows)
	}
}

func TestBackup(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.Table(context.Background(), "todos", []string{"id"}); err != nil {
		t.Fatalf("Table() error = %v", err)
	}

	dest := filepath.Join(t.TempDir(), "backups", "lifeos-backup.db")
	if err := s.Backup(context.Background(), dest); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
	if err := s.Backup(context.Background(), dest); err == nil {
		t.Error("Backup() should refuse to overwrite an existing file")
	}

	restored := NewStore(dest)
	if err := restored.Load(); err != nil {
		t.Fatalf("Load() of backup error = %v", err)
	}
	defer restored.Close()
}
