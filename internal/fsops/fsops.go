package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// Exists checks if a path exists
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// IsDir checks if a path is a directory
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ListFiles returns the regular files directly inside dir whose name has
// the given suffix. A missing directory yields no files and no error.
func ListFiles(fs afero.Fs, dir, suffix string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// CanRemove reports whether the current user may delete path without
// elevation: its parent directory must be writable
func CanRemove(path string) bool {
	return unix.Access(filepath.Dir(path), unix.W_OK) == nil
}

// RemoveAll deletes path and everything below it
func RemoveAll(fs afero.Fs, path string) error {
	if err := fs.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
