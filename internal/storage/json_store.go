package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	lerrors "github.com/julianstephens/lifeos/internal/errors"
)

type sheetFile struct {
	Version int                   `json:"version"`
	Sheets  map[string][][]string `json:"sheets"` // name -> rows, header first
}

// JSONStore keeps every sheet in one JSON file, rewritten on each change.
type JSONStore struct {
	path string

	mu    sync.Mutex
	store *sheetFile
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return s.loadLocked()
	}

	s.store = &sheetFile{Version: 1, Sheets: map[string][][]string{}}
	return s.saveLocked()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *JSONStore) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'lifeos init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	store := &sheetFile{}
	if err := json.Unmarshal(data, store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if store.Sheets == nil {
		store.Sheets = map[string][][]string{}
	}
	s.store = store
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) saveLocked() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	// Write then rename so a crash never leaves a truncated file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

// Backup writes the current sheets to dest, which must not exist.
func (s *JSONStore) Backup(_ context.Context, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup target already exists: %s", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	return os.WriteFile(dest, data, 0600)
}

func (s *JSONStore) Table(_ context.Context, name string, header []string) (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	if _, ok := s.store.Sheets[name]; !ok {
		s.store.Sheets[name] = [][]string{slices.Clone(header)}
		if err := s.saveLocked(); err != nil {
			return nil, err
		}
	}
	return &jsonTable{store: s, name: name}, nil
}

type jsonTable struct {
	store *JSONStore
	name  string
}

func (t *jsonTable) Name() string { return t.name }

func (t *jsonTable) Append(_ context.Context, fields []string) (RowID, error) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Sheets[t.name] = append(s.store.Sheets[t.name], slices.Clone(fields))
	if err := s.saveLocked(); err != nil {
		return 0, err
	}
	return RowID(len(s.store.Sheets[t.name])), nil
}

func (t *jsonTable) Find(ctx context.Context, pred Predicate) ([]Row, error) {
	all, err := t.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return dataRows(all, pred), nil
}

func (t *jsonTable) Update(_ context.Context, id RowID, column int, value string) error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.store.Sheets[t.name]
	if id < 1 || int(id) > len(rows) {
		return fmt.Errorf("%w: row %d in sheet %s", lerrors.ErrNotFound, id, t.name)
	}
	if column < 0 {
		return fmt.Errorf("invalid column %d", column)
	}
	rows[id-1] = setCell(rows[id-1], column, value)
	return s.saveLocked()
}

func (t *jsonTable) GetAll(_ context.Context) ([][]string, error) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.store.Sheets[t.name]
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out, nil
}
