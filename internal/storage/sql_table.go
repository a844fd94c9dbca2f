package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	lerrors "github.com/julianstephens/lifeos/internal/errors"
)

// Rebind rewrites a query written with ? placeholders for a driver.
type Rebind func(query string) string

// QuestionBinds leaves ? placeholders as they are (SQLite).
func QuestionBinds(query string) string { return query }

// DollarBinds numbers placeholders as $1, $2, ... (PostgreSQL).
func DollarBinds(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLTable is a sheet stored in the sheets/sheet_rows schema. Cells are kept as
// a JSON array per row.
type SQLTable struct {
	db     *sql.DB
	name   string
	rebind Rebind
}

// OpenSQLTable registers the sheet and its header row when missing.
func OpenSQLTable(ctx context.Context, db *sql.DB, rebind Rebind, name string, header []string) (*SQLTable, error) {
	t := &SQLTable{db: db, name: name, rebind: rebind}

	cells, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to encode header: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, t.q(`
		INSERT INTO sheets (name, created_at) VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING`), name, now); err != nil {
		return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, t.q(`
		INSERT INTO sheet_rows (sheet, row_num, cells, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (sheet, row_num) DO NOTHING`), name, int(HeaderRow), string(cells), now); err != nil {
		return nil, fmt.Errorf("failed to write header for sheet %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sheet %s: %w", name, err)
	}
	return t, nil
}

func (t *SQLTable) q(query string) string { return t.rebind(query) }

func (t *SQLTable) Name() string { return t.name }

func (t *SQLTable) Append(ctx context.Context, fields []string) (RowID, error) {
	cells, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("failed to encode row: %w", err)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var last int
	if err := tx.QueryRowContext(ctx, t.q(`SELECT COALESCE(MAX(row_num), 0) FROM sheet_rows WHERE sheet = ?`), t.name).Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to find last row of %s: %w", t.name, err)
	}

	id := RowID(last + 1)
	if _, err := tx.ExecContext(ctx, t.q(`
		INSERT INTO sheet_rows (sheet, row_num, cells, updated_at) VALUES (?, ?, ?, ?)`),
		t.name, int(id), string(cells), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, fmt.Errorf("failed to append to %s: %w", t.name, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit append to %s: %w", t.name, err)
	}
	return id, nil
}

func (t *SQLTable) Find(ctx context.Context, pred Predicate) ([]Row, error) {
	rows, err := t.scan(ctx)
	if err != nil {
		return nil, err
	}
	var out []Row
	for _, r := range rows {
		if r.ID == HeaderRow {
			continue
		}
		if pred == nil || pred(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *SQLTable) Update(ctx context.Context, id RowID, column int, value string) error {
	if column < 0 {
		return fmt.Errorf("invalid column %d", column)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, t.q(`SELECT cells FROM sheet_rows WHERE sheet = ? AND row_num = ?`), t.name, int(id)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: row %d in sheet %s", lerrors.ErrNotFound, id, t.name)
	}
	if err != nil {
		return fmt.Errorf("failed to read row %d of %s: %w", id, t.name, err)
	}

	var fields []string
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return fmt.Errorf("failed to decode row %d of %s: %w", id, t.name, err)
	}
	cells, err := json.Marshal(setCell(fields, column, value))
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, t.q(`
		UPDATE sheet_rows SET cells = ?, updated_at = ? WHERE sheet = ? AND row_num = ?`),
		string(cells), time.Now().UTC().Format(time.RFC3339), t.name, int(id)); err != nil {
		return fmt.Errorf("failed to update row %d of %s: %w", id, t.name, err)
	}
	return tx.Commit()
}

func (t *SQLTable) GetAll(ctx context.Context) ([][]string, error) {
	rows, err := t.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Fields)
	}
	return out, nil
}

func (t *SQLTable) scan(ctx context.Context) ([]Row, error) {
	rows, err := t.db.QueryContext(ctx, t.q(`SELECT row_num, cells FROM sheet_rows WHERE sheet = ? ORDER BY row_num`), t.name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var num int
		var raw string
		if err := rows.Scan(&num, &raw); err != nil {
			return nil, err
		}
		var fields []string
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("failed to decode row %d of %s: %w", num, t.name, err)
		}
		out = append(out, Row{ID: RowID(num), Fields: fields})
	}
	return out, rows.Err()
}
