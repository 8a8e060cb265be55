// Package artifacts owns the externally-held capture images that raw samples
// point at. The database stores only paths; the bytes live here, and the
// retention service counts them against the storage budget.
package artifacts

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store writes, removes, and measures capture images under a single
// directory.
type Store struct {
	dir string
}

// NewStore creates the artifact directory if needed and returns a Store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// Save writes one capture image and returns its path. File names embed the
// capture timestamp so a directory listing reads chronologically.
func (s *Store) Save(ts time.Time, data []byte) (string, error) {
	name := ts.UTC().Format("20060102T150405.000000000Z") + ".png"
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}

// Remove deletes one image. Paths outside the store's directory are refused;
// a missing file is not an error (retention may race a manual cleanup).
func (s *Store) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve image path: %w", err)
	}
	root, err := filepath.Abs(s.dir)
	if err != nil {
		return fmt.Errorf("resolve artifact directory: %w", err)
	}
	if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s: outside artifact directory", path)
	}

	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// TotalBytes sums the size of every file under the artifact directory.
func (s *Store) TotalBytes() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("measure artifacts: %w", err)
	}
	return total, nil
}
