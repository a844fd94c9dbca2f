package system

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/storage"
)

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, _ := setupTestInit(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out := &bytes.Buffer{}
	ctx.Out = out

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Database is up to date") {
		t.Errorf("output %q should report an up to date schema", out)
	}
	if err := checkMigrations(ctx); err != nil {
		t.Errorf("checkMigrations() = %v, want nil", err)
	}
}

func TestMigrateCmd_JSONBackend(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Storage.Backend = config.BackendJSON
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "lifeos.json"))
	ctx := &cli.Context{Config: cfg, Store: store, Out: &bytes.Buffer{}}

	if err := (&MigrateCmd{}).Run(ctx); err == nil {
		t.Error("migrate should refuse the json backend")
	}
	if err := checkMigrations(ctx); err != nil {
		t.Errorf("checkMigrations() = %v, want nil for a schemaless store", err)
	}
}
