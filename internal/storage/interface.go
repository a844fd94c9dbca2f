// Package storage is the sheet-shaped record store: named tables of string
// rows, each with a header at row 1 and data from row 2.
package storage

import (
	"context"
	"strings"
)

// RowID is the 1-based position of a row in its sheet. The header is row 1.
type RowID int

// HeaderRow is the RowID of every sheet's header.
const HeaderRow RowID = 1

// Row is one data row.
type Row struct {
	ID     RowID
	Fields []string
}

// Field returns the i-th (0-based) cell, or "" when the row is shorter.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Predicate selects rows in Find.
type Predicate func(Row) bool

// Table is one sheet.
type Table interface {
	Name() string
	// Append adds a row after the last one and returns its id.
	Append(ctx context.Context, fields []string) (RowID, error)
	// Find returns the data rows (header excluded) matching pred, in sheet order.
	Find(ctx context.Context, pred Predicate) ([]Row, error)
	// Update sets one cell. column is 0-based; short rows are padded.
	Update(ctx context.Context, id RowID, column int, value string) error
	// GetAll returns every row including the header at index 0.
	GetAll(ctx context.Context) ([][]string, error)
}

// Provider owns the backend lifecycle and hands out tables.
type Provider interface {
	Init() error
	Load() error
	Close() error

	// Table opens the named sheet, creating it with header when missing.
	Table(ctx context.Context, name string, header []string) (Table, error)

	GetConfigPath() string
}

// Migrator is implemented by providers with a versioned schema.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	PendingMigrations() (int, error)
}

// All matches every row.
func All(Row) bool { return true }

// ColumnEquals matches rows whose column equals value.
func ColumnEquals(column int, value string) Predicate {
	return func(r Row) bool { return r.Field(column) == value }
}

// ColumnEqualFold matches rows whose column equals value, ignoring case.
func ColumnEqualFold(column int, value string) Predicate {
	return func(r Row) bool { return strings.EqualFold(r.Field(column), value) }
}

// Both matches rows accepted by a and b.
func Both(a, b Predicate) Predicate {
	return func(r Row) bool { return a(r) && b(r) }
}

// dataRows converts GetAll output into Rows, dropping the header.
func dataRows(all [][]string, pred Predicate) []Row {
	var rows []Row
	for i := 1; i < len(all); i++ {
		row := Row{ID: RowID(i + 1), Fields: all[i]}
		if pred == nil || pred(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func setCell(fields []string, column int, value string) []string {
	for len(fields) <= column {
		fields = append(fields, "")
	}
	fields[column] = value
	return fields
}
