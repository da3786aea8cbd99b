package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/db"
)

var _ db.BlobStore = (*Store)(nil)

// Store keeps one file per key inside a directory. Writes go through a
// temporary file and a rename so readers never observe a partial blob.
type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

// Ping checks that the directory is still there.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if !info.IsDir() {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%s is not a directory", s.dir)}
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() {}

// Get reads the blob stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set atomically replaces the blob stored under key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return &db.Error{Op: db.OpSet, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &db.Error{Op: db.OpSet, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes the blob. Missing keys are not an error.
func (s *Store) Del(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// path maps a key to a file inside dir. Keys must be plain file names.
func (s *Store) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", db.ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key), nil
}
