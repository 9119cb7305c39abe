package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage keeps each slot as a JSON file under a base directory.
type FileStorage struct {
	dir   string
	quota int64
}

// NewFileStorage opens (creating if needed) a storage directory. A quota of 0
// means unlimited; otherwise SetItem rejects values larger than quota bytes.
func NewFileStorage(dir string, quota int64) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{dir: dir, quota: quota}, nil
}

func (s *FileStorage) path(key string) string {
	// Slot names become file names, so keep them path-safe.
	safe := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, safe+".json")
}

// GetItem reads a slot from disk.
func (s *FileStorage) GetItem(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SetItem writes a slot atomically via a temp file and rename.
func (s *FileStorage) SetItem(key string, value []byte) error {
	if s.quota > 0 && int64(len(value)) > s.quota {
		return ErrQuotaExceeded
	}
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// RemoveItem deletes a slot's file.
func (s *FileStorage) RemoveItem(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
