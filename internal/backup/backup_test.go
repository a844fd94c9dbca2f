package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/storage"
	"github.com/julianstephens/lifeos/internal/storage/sqlite"
)

func setupSQLite(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "lifeos.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	seed(t, store)
	return store
}

func seed(t *testing.T, store storage.Provider) {
	t.Helper()
	table, err := store.Table(context.Background(), constants.SheetTodos, constants.TodoHeader)
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	for _, content := range []string{"buy milk", "call mom"} {
		fields := make([]string, len(constants.TodoHeader))
		fields[1] = content
		if _, err := table.Append(context.Background(), fields); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
}

// clock returns a fake now that advances one second per call.
func clock() func() time.Time {
	current := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func todoCount(t *testing.T, store storage.Provider) int {
	t.Helper()
	table, err := store.Table(context.Background(), constants.SheetTodos, constants.TodoHeader)
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	rows, err := table.Find(context.Background(), storage.All)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	return len(rows)
}

func TestCreateSQLite(t *testing.T) {
	store := setupSQLite(t)
	mgr := NewManager(store.GetConfigPath())
	mgr.now = clock()

	path, err := mgr.Create(context.Background(), store)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got, want := filepath.Base(path), "lifeos-20261019-080001.db"; got != want {
		t.Errorf("backup name = %q, want %q", got, want)
	}
	if filepath.Dir(path) != mgr.Dir() {
		t.Errorf("backup dir = %q, want %q", filepath.Dir(path), mgr.Dir())
	}

	copied := sqlite.NewStore(path)
	if err := copied.Load(); err != nil {
		t.Fatalf("Load() of backup error = %v", err)
	}
	defer copied.Close()
	if n := todoCount(t, copied); n != 2 {
		t.Errorf("backup has %d todos, want 2", n)
	}
}

func TestCreateJSON(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "lifeos.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	seed(t, store)

	mgr := NewManager(store.GetConfigPath())
	mgr.now = clock()
	path, err := mgr.Create(context.Background(), store)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("backup %q should keep the store extension", path)
	}

	copied := storage.NewJSONStore(path)
	if err := copied.Load(); err != nil {
		t.Fatalf("Load() of backup error = %v", err)
	}
	if n := todoCount(t, copied); n != 2 {
		t.Errorf("backup has %d todos, want 2", n)
	}
}

type noBackup struct{ storage.Provider }

func TestCreateUnsupported(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "lifeos.db"))
	if _, err := mgr.Create(context.Background(), noBackup{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Create() error = %v, want ErrUnsupported", err)
	}
}

func TestCreateSameSecond(t *testing.T) {
	store := setupSQLite(t)
	mgr := NewManager(store.GetConfigPath())
	fixed := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return fixed }

	first, err := mgr.Create(context.Background(), store)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := mgr.Create(context.Background(), store)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first == second {
		t.Fatalf("both backups written to %q", first)
	}
	if got, want := filepath.Base(second), "lifeos-20261019-080000-1.db"; got != want {
		t.Errorf("second backup = %q, want %q", got, want)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("List() returned %d backups, want 2", len(backups))
	}
}

func TestRotation(t *testing.T) {
	store := setupSQLite(t)
	mgr := NewManager(store.GetConfigPath())
	mgr.now = clock()

	for i := 0; i < constants.MaxBackups+3; i++ {
		if _, err := mgr.Create(context.Background(), store); err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("List() returned %d backups, want %d", len(backups), constants.MaxBackups)
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backup %d is newer than backup %d", i, i-1)
		}
	}
	if got, want := filepath.Base(backups[0].Path), "lifeos-20261019-080013.db"; got != want {
		t.Errorf("newest backup = %q, want %q", got, want)
	}
}

func TestListIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(filepath.Join(dir, "lifeos.db"))
	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "lifeos-garbage.db", "lifeos-20261019-080000.json", "lifeos-20261019-080000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 1 || filepath.Base(backups[0].Path) != "lifeos-20261019-080000.db" {
		t.Errorf("List() = %+v, want only the .db backup", backups)
	}
}

func TestListMissingDir(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "lifeos.db"))
	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %v, want none", backups)
	}
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "lifeos.json")
	store := storage.NewJSONStore(storePath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	seed(t, store)

	mgr := NewManager(storePath)
	mgr.now = clock()
	backupPath, err := mgr.Create(context.Background(), store)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// diverge from the backup
	seed(t, store)
	if n := todoCount(t, store); n != 4 {
		t.Fatalf("store has %d todos before restore, want 4", n)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	saved, err := mgr.Restore(backupPath, storePath)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if saved == "" {
		t.Fatal("Restore() did not save the current store")
	}

	restored := storage.NewJSONStore(storePath)
	if err := restored.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n := todoCount(t, restored); n != 2 {
		t.Errorf("restored store has %d todos, want 2", n)
	}

	previous := storage.NewJSONStore(saved)
	if err := previous.Load(); err != nil {
		t.Fatalf("Load() of saved copy error = %v", err)
	}
	if n := todoCount(t, previous); n != 4 {
		t.Errorf("saved copy has %d todos, want 4", n)
	}
}

func TestRestoreRejectsWrongType(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(filepath.Join(dir, "lifeos.db"))
	other := filepath.Join(dir, "lifeos-20261019-080000.json")
	if err := os.WriteFile(other, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(other, filepath.Join(dir, "lifeos.db")); err == nil {
		t.Error("Restore() should reject a backup of another store type")
	}
}
