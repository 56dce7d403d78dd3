// Package workspace provides access to the files of the working tree,
// always addressed by paths relative to the repository root.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

var ignored = map[string]bool{
	".git": true,
}

// ErrMissingFile reports a pathspec that matched nothing in the workspace.
type ErrMissingFile struct {
	Path string
}

func (e *ErrMissingFile) Error() string {
	return fmt.Sprintf("pathspec '%s' did not match any files", e.Path)
}

// ErrNoPermission reports an unreadable workspace file.
type ErrNoPermission struct {
	Path string
	Op   string
}

func (e *ErrNoPermission) Error() string {
	return fmt.Sprintf("%s('%s'): Permission denied", e.Op, e.Path)
}

type Workspace struct {
	root string
}

func New(root string) *Workspace {
	return &Workspace{root: root}
}

// ListFiles returns every file under path, relative to the workspace root.
// An empty path lists the whole workspace; a file path lists just itself.
func (w *Workspace) ListFiles(path string) ([]string, error) {
	abs := filepath.Join(w.root, path)

	stat, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrMissingFile{Path: path}
		}
		return nil, err
	}

	if !stat.IsDir() {
		return []string{filepath.ToSlash(path)}, nil
	}
	return w.listFilesAt(abs)
}

// ListDir returns the immediate children of dirname mapped to their stats.
// Paths are relative to the workspace root; ignored names are skipped.
func (w *Workspace) ListDir(dirname string) (map[string]os.FileInfo, error) {
	abs := filepath.Join(w.root, dirname)

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dirname, err)
	}

	stats := make(map[string]os.FileInfo)
	for _, entry := range entries {
		rel := filepath.ToSlash(filepath.Join(dirname, entry.Name()))
		if ignored[rel] {
			continue
		}

		stat, err := os.Stat(filepath.Join(abs, entry.Name()))
		if err != nil {
			return nil, err
		}
		stats[rel] = stat
	}
	return stats, nil
}

func (w *Workspace) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(w.root, path))
	if err != nil {
		if os.IsPermission(err) {
			return nil, &ErrNoPermission{Path: path, Op: "open"}
		}
		return nil, err
	}
	return data, nil
}

func (w *Workspace) StatFile(path string) (os.FileInfo, error) {
	stat, err := os.Stat(filepath.Join(w.root, path))
	if err != nil {
		if os.IsPermission(err) {
			return nil, &ErrNoPermission{Path: path, Op: "stat"}
		}
		return nil, err
	}
	return stat, nil
}

func (w *Workspace) Remove(path string) error {
	return os.Remove(filepath.Join(w.root, path))
}

func (w *Workspace) listFilesAt(abs string) ([]string, error) {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(abs, entry.Name())
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil, err
		}
		rel = filepath.ToSlash(rel)

		if ignored[rel] {
			continue
		}
		if entry.IsDir() {
			nested, err := w.listFilesAt(path)
			if err != nil {
				return nil, err
			}
			files = append(files, nested...)
		} else {
			files = append(files, rel)
		}
	}

	sort.Strings(files)
	return files, nil
}
