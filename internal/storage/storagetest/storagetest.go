// Package storagetest checks that a storage.Provider behaves like a sheet.
package storagetest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/storage"
)

var header = []string{"id", "name", "status"}

// Run exercises every Table operation against a freshly initialized provider.
func Run(t *testing.T, newProvider func(t *testing.T) storage.Provider) {
	t.Helper()

	t.Run("new sheet has only its header", func(t *testing.T) {
		table := open(t, newProvider(t), "things")
		all, err := table.GetAll(context.Background())
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(all) != 1 || !reflect.DeepEqual(all[0], header) {
			t.Errorf("GetAll() = %v, want only the header", all)
		}
	})

	t.Run("append assigns consecutive row ids after the header", func(t *testing.T) {
		ctx := context.Background()
		table := open(t, newProvider(t), "things")

		for i, want := range []storage.RowID{2, 3, 4} {
			id, err := table.Append(ctx, []string{string(rune('a' + i)), "x", "open"})
			if err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			if id != want {
				t.Errorf("Append() id = %d, want %d", id, want)
			}
		}

		all, err := table.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("GetAll() returned %d rows, want 4", len(all))
		}
		if all[2][0] != "b" {
			t.Errorf("row 3 = %v, want id b", all[2])
		}
	})

	t.Run("find filters data rows and reports their ids", func(t *testing.T) {
		ctx := context.Background()
		table := open(t, newProvider(t), "things")
		mustAppend(t, table, "1", "walk", "open")
		mustAppend(t, table, "2", "cook", "done")
		mustAppend(t, table, "3", "read", "open")

		rows, err := table.Find(ctx, storage.ColumnEquals(2, "open"))
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("Find() returned %d rows, want 2", len(rows))
		}
		if rows[0].ID != 2 || rows[1].ID != 4 {
			t.Errorf("Find() ids = %d, %d, want 2, 4", rows[0].ID, rows[1].ID)
		}

		all, err := table.Find(ctx, storage.All)
		if err != nil {
			t.Fatalf("Find(All) error = %v", err)
		}
		if len(all) != 3 {
			t.Errorf("Find(All) returned %d rows, want 3 (header excluded)", len(all))
		}
	})

	t.Run("update sets one cell and pads short rows", func(t *testing.T) {
		ctx := context.Background()
		table := open(t, newProvider(t), "things")
		id := mustAppend(t, table, "1")

		if err := table.Update(ctx, id, 2, "done"); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		rows, err := table.Find(ctx, storage.All)
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		want := []string{"1", "", "done"}
		if !reflect.DeepEqual(rows[0].Fields, want) {
			t.Errorf("row = %v, want %v", rows[0].Fields, want)
		}
	})

	t.Run("update of a missing row is not found", func(t *testing.T) {
		table := open(t, newProvider(t), "things")
		err := table.Update(context.Background(), 42, 0, "x")
		if !errors.Is(err, lerrors.ErrNotFound) {
			t.Errorf("Update() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("reopening a sheet keeps its rows", func(t *testing.T) {
		p := newProvider(t)
		mustAppend(t, open(t, p, "things"), "1", "walk", "open")

		again := open(t, p, "things")
		all, err := again.GetAll(context.Background())
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(all) != 2 {
			t.Errorf("GetAll() returned %d rows, want 2", len(all))
		}
	})

	t.Run("sheets are independent", func(t *testing.T) {
		p := newProvider(t)
		mustAppend(t, open(t, p, "a"), "1")
		all, err := open(t, p, "b").GetAll(context.Background())
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(all) != 1 {
			t.Errorf("sheet b has %d rows, want only its header", len(all))
		}
	})
}

func open(t *testing.T, p storage.Provider, name string) storage.Table {
	t.Helper()
	table, err := p.Table(context.Background(), name, header)
	if err != nil {
		t.Fatalf("Table(%s) error = %v", name, err)
	}
	return table
}

func mustAppend(t *testing.T, table storage.Table, fields ...string) storage.RowID {
	t.Helper()
	id, err := table.Append(context.Background(), fields)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	return id
}
