package storage

import (
	"os"
	"path/filepath"
	"strings"

	"gopitch/internal/errors"

	"github.com/google/uuid"
)

// FileStore persists uploaded recordings on disk under a single directory.
// Files are named by uuid with the original extension preserved.
type FileStore struct {
	dir string
}

// NewFileStore creates the upload directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.ConfigInvalid("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create upload directory")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the storage root
func (fs *FileStore) Dir() string {
	return fs.dir
}

// Save writes an uploaded recording and returns its stored path
func (fs *FileStore) Save(data []byte, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".wav"
	}
	path := filepath.Join(fs.dir, uuid.New().String()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write audio file")
	}
	return path, nil
}

// Exists reports whether a stored file is still present on disk
func (fs *FileStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes a stored file, ignoring files already gone
func (fs *FileStore) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove audio file")
	}
	return nil
}
