package startpage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage keys shared by every KeyValueStore implementation.
const (
	StorageKey       = "dashboard-config"
	VersionKey       = "dashboard-config-version"
	DatabaseImageKey = "dashboard_sqlite_db"
)

var errInvalidKey = errors.New("startpage: storage key is required")

// MemoryKV keeps values in process memory.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]string{}}
}

// Get returns the stored value.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores the value.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// FileKV stores one file per key inside a directory. Writes go through a
// temporary file and a rename so readers never observe partial documents.
type FileKV struct {
	dir string
	mu  sync.Mutex
}

// NewFileKV creates the directory when needed and returns the store.
func NewFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		return nil, errors.New("startpage: file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("startpage: create store dir %q: %w", dir, err)
	}
	return &FileKV{dir: dir}, nil
}

// Dir returns the backing directory.
func (f *FileKV) Dir() string {
	return f.dir
}

// Path returns the file used for key.
func (f *FileKV) Path(key string) string {
	return filepath.Join(f.dir, filepath.Base(key))
}

// Get reads the file for key.
func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errInvalidKey
	}
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("startpage: read %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set atomically replaces the file for key.
func (f *FileKV) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errInvalidKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tmp, err := os.CreateTemp(f.dir, "."+filepath.Base(key)+".*")
	if err != nil {
		return fmt.Errorf("startpage: write %q: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("startpage: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("startpage: write %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.Path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("startpage: write %q: %w", key, err)
	}
	return nil
}
