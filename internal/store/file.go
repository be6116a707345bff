package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File keeps all keys in a single JSON object on disk. The whole file is
// rewritten on every Set.
type File struct {
	mu   sync.RWMutex
	path string
	data map[string]string
}

// NewFile opens the JSON store at path. A missing file is an empty store;
// the file is created on the first Set.
func NewFile(path string) (*File, error) {
	f := &File{path: path, data: make(map[string]string)}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &f.data); err != nil {
		return fmt.Errorf("invalid store file %s: %w", f.path, err)
	}
	if f.data == nil {
		f.data = make(map[string]string)
	}
	return nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data[key] = value
	return f.save()
}

// save writes the store to disk. Caller must hold the write lock.
func (f *File) save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create store directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	data = append(data, '\n')

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
