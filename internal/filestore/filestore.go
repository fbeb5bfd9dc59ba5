package filestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store keeps uploaded product images on local disk and hands out the
// public URL they are served under.
type Store struct {
	Dir       string
	URLPrefix string
}

func New(dir string) *Store {
	return &Store{Dir: dir, URLPrefix: "/images"}
}

func (s *Store) Save(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	fileName := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	f, err := os.Create(filepath.Join(s.Dir, fileName))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return path.Join(s.URLPrefix, fileName), nil
}

// Delete removes the file behind url; a file that is already gone is not an error.
func (s *Store) Delete(url string) error {
	if url == "" {
		return nil
	}
	p, err := s.Path(url)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

func (s *Store) Path(url string) (string, error) {
	name := path.Base(strings.TrimPrefix(url, s.URLPrefix))
	if name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("bad image url %q", url)
	}
	return filepath.Join(s.Dir, name), nil
}
