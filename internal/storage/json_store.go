package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (s *JSONStore) Init() error {
	// Create data directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	return s.Save(NewSnapshot())
}

// Load reads the snapshot file. A missing file yields an empty snapshot.
func (s *JSONStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSnapshot(), nil
		}
		return Snapshot{}, fmt.Errorf("failed to read storage: %w", err)
	}

	return DecodeSnapshot(data)
}

// Save atomically replaces the snapshot file.
func (s *JSONStore) Save(snapshot Snapshot) error {
	snapshot = snapshot.Clone()
	snapshot.SortCompletions()
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	return WriteFileAtomic(s.path, data, 0600)
}

// WriteFileAtomic replaces path with data using the temp-file, fsync,
// rename pattern so a crash mid-write never leaves a truncated file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// GetConfigPath returns the path to the underlying storage file.
//
// Concurrency note:
//   - Running multiple habitual processes that share the same storage path at the
//     same time is not supported; the last writer wins.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
