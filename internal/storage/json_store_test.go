package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/lifeos/internal/storage"
	"github.com/julianstephens/lifeos/internal/storage/storagetest"
)

func newJSONStore(t *testing.T) storage.Provider {
	t.Helper()
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "lifeos.json"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestJSONStoreContract(t *testing.T) {
	storagetest.Run(t, newJSONStore)
}

func TestJSONStorePersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifeos.json")
	first := storage.NewJSONStore(path)
	if err := first.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	table, err := first.Table(t.Context(), "todos", []string{"id", "content"})
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	if _, err := table.Append(t.Context(), []string{"1", "buy milk"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	second := storage.NewJSONStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	reopened, err := second.Table(t.Context(), "todos", []string{"id", "content"})
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	rows, err := reopened.Find(t.Context(), storage.All)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Field(1) != "buy milk" {
		t.Errorf("rows after reload = %+v", rows)
	}
}

func TestJSONStoreLoadRequiresInit(t *testing.T) {
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
	if err := s.Load(); err == nil {
		t.Error("Load() should fail before Init")
	}
}

func TestJSONStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifeos.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := storage.NewJSONStore(path).Load(); err == nil {
		t.Error("Load() should fail on a corrupt file")
	}
}

func TestRowField(t *testing.T) {
	r := storage.Row{ID: 2, Fields: []string{"a", "b"}}
	if r.Field(1) != "b" || r.Field(5) != "" || r.Field(-1) != "" {
		t.Errorf("Field() returned unexpected values")
	}
}

func TestDollarBinds(t *testing.T) {
	got := storage.DollarBinds("UPDATE t SET a = ? WHERE b = ? AND c = ?")
	want := "UPDATE t SET a = $1 WHERE b = $2 AND c = $3"
	if got != want {
		t.Errorf("DollarBinds() = %q, want %q", got, want)
	}
}

func TestPredicates(t *testing.T) {
	r := storage.Row{Fields: []string{"2026-10-19", "Walk"}}
	if !storage.ColumnEqualFold(1, "walk")(r) {
		t.Error("ColumnEqualFold should ignore case")
	}
	if storage.ColumnEquals(1, "walk")(r) {
		t.Error("ColumnEquals should be case-sensitive")
	}
	if !storage.Both(storage.ColumnEquals(0, "2026-10-19"), storage.ColumnEqualFold(1, "WALK"))(r) {
		t.Error("Both should match when both predicates match")
	}
}
