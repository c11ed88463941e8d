package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps each document in its own file. Names are paths, relative
// ones resolved against Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (f *FileStore) path(name string) string {
	if filepath.IsAbs(name) || f.Dir == "" {
		return name
	}
	return filepath.Join(f.Dir, name)
}

func (f *FileStore) Load(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(f.path(name))
}

// Save writes through a temp file in the target directory and renames it
// into place, so readers see either the old or the new document.
func (f *FileStore) Save(_ context.Context, name string, data []byte) error {
	p := f.path(name)
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (f *FileStore) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(f.path(name))
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (f *FileStore) Close() error { return nil }
