// Package backup keeps timestamped copies of the local record store.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/logger"
)

const (
	// FilePrefix starts every backup file name
	FilePrefix = "lifeos-"
	// timestampFormat is the part of the name between prefix and extension
	timestampFormat = "20060102-150405"
)

// ErrUnsupported is returned for stores that cannot be copied locally.
var ErrUnsupported = errors.New("backups are only supported for the sqlite and json backends")

// Backuper is a store that can write a consistent copy of itself.
type Backuper interface {
	Backup(ctx context.Context, dest string) error
	GetConfigPath() string
}

// Info describes one backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager handles backup operations
type Manager struct {
	dir string
	ext string
	now func() time.Time
}

// NewManager keeps backups of the store file at storePath in a backups
// directory next to it.
func NewManager(storePath string) *Manager {
	return &Manager{
		dir: filepath.Join(filepath.Dir(storePath), constants.BackupDirName),
		ext: filepath.Ext(storePath),
		now: time.Now,
	}
}

// Dir returns the backup directory path
func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a new backup of store and prunes the oldest beyond
// constants.MaxBackups.
func (m *Manager) Create(ctx context.Context, store any) (string, error) {
	b, ok := store.(Backuper)
	if !ok {
		return "", ErrUnsupported
	}

	base := FilePrefix + m.now().Format(timestampFormat)
	path := filepath.Join(m.dir, base+m.ext)
	for n := 1; fileExists(path); n++ {
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s-%d%s", base, n, m.ext))
	}

	if err := b.Backup(ctx, path); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", b.GetConfigPath(), err)
	}

	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return path, nil
}

// List returns backups sorted newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || filepath.Ext(name) != m.ext {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), m.ext)
		if len(stamp) > len(timestampFormat) {
			// drop a "-N" uniqueness counter
			stamp = stamp[:len(timestampFormat)]
		}
		ts, err := time.Parse(timestampFormat, stamp)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.dir, name),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// Restore replaces the store file at storePath with the backup at
// backupPath. The store must be closed. The current file is copied aside
// first and the path of that copy is returned.
func (m *Manager) Restore(backupPath, storePath string) (string, error) {
	if filepath.Ext(backupPath) != m.ext {
		return "", fmt.Errorf("backup %s does not match store type %q", filepath.Base(backupPath), m.ext)
	}
	if !fileExists(backupPath) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	var saved string
	if fileExists(storePath) {
		saved = filepath.Join(m.dir, FilePrefix+m.now().Format(timestampFormat)+"-pre-restore"+m.ext)
		if err := os.MkdirAll(m.dir, 0700); err != nil {
			return "", fmt.Errorf("failed to create backup directory: %w", err)
		}
		if err := copyFile(storePath, saved); err != nil {
			return "", fmt.Errorf("failed to save current store before restore: %w", err)
		}
	}

	tempPath := storePath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return saved, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tempPath, storePath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tempPath, "error", removeErr)
		}
		return saved, fmt.Errorf("failed to restore store: %w", err)
	}
	// stale sqlite journals would otherwise be replayed over the restored file
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(storePath + suffix)
	}
	return saved, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
