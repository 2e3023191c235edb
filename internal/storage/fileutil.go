// Package storage holds small filesystem helpers shared by the store and
// the merge engine.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// ListSubdirs returns the full paths of the immediate subdirectories of dir,
// in the order os.ReadDir yields them. Symlinks to directories count as
// subdirectories; broken links do not. Unlike the selectors, a listing
// failure here is returned to the caller.
func ListSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list subdirs %s: %w", dir, err)
	}

	var dirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() || (entry.Type()&os.ModeSymlink != 0 && DirExists(path)) {
			dirs = append(dirs, path)
		}
	}
	return dirs, nil
}

// FileExists returns true if the path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
