package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FileBlob stores each key as a JSON file under a base directory. Writes go
// through a temp file and rename so a crash mid-save never leaves a
// half-written blob behind.
type FileBlob struct {
	dir string
}

// NewFileBlob creates the base directory if needed.
func NewFileBlob(dir string) (*FileBlob, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileBlob{dir: dir}, nil
}

// DefaultDir returns the conventional store location under the user's home.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".agentchat"), nil
}

func (f *FileBlob) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Load reads the blob for key. An absent file is not an error.
func (f *FileBlob) Load(_ context.Context, key string) ([]byte, bool, error) {
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// Save writes the blob atomically via temp file + rename.
func (f *FileBlob) Save(_ context.Context, key string, data []byte) error {
	target := f.path(key)
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, target)
}

// Close is a no-op for the file backend.
func (f *FileBlob) Close() error { return nil }
