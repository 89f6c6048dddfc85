//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// dirStorage mounts a host directory in place of the SD card.
type dirStorage struct {
	root    string
	mounted bool
}

func newDirStorage(root string) *dirStorage {
	if strings.TrimSpace(root) == "" {
		return nil
	}
	return &dirStorage{root: root}
}

func (s *dirStorage) Mount() error {
	st, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("storage mount %s: %w", s.root, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("storage mount %s: not a directory", s.root)
	}
	s.mounted = true
	return nil
}

func (s *dirStorage) resolve(name string) (string, error) {
	if !s.mounted {
		return "", errors.New("storage: not mounted")
	}
	clean := path.Clean("/" + filepath.ToSlash(name))
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *dirStorage) ReadDir(dir string) ([]string, error) {
	p, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *dirStorage) ReadFile(name string) ([]byte, error) {
	p, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// StoragePath returns the host directory backing a storage handle, if any.
func StoragePath(s Storage) (string, bool) {
	ds, ok := s.(*dirStorage)
	if !ok || ds == nil {
		return "", false
	}
	return ds.root, true
}
