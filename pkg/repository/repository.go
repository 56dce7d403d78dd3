// Package repository wires the object database, index, refs, and workspace
// of a single repository together and computes working-tree status.
package repository

import (
	"path/filepath"

	"github.com/grit-vcs/grit/pkg/config"
	"github.com/grit-vcs/grit/pkg/database"
	"github.com/grit-vcs/grit/pkg/index"
	"github.com/grit-vcs/grit/pkg/refs"
	"github.com/grit-vcs/grit/pkg/workspace"
)

type Repository struct {
	RootPath  string
	GitPath   string
	Config    *config.Config
	Database  *database.Database
	Index     *index.Index
	Refs      *refs.Refs
	Workspace *workspace.Workspace
}

// New builds a repository around its `.git` directory.
func New(gitPath string) *Repository {
	rootPath := filepath.Dir(gitPath)

	return &Repository{
		RootPath:  rootPath,
		GitPath:   gitPath,
		Config:    config.New(filepath.Join(gitPath, "config")),
		Database:  database.New(filepath.Join(gitPath, "objects")),
		Index:     index.New(filepath.Join(gitPath, "index")),
		Refs:      refs.New(gitPath),
		Workspace: workspace.New(rootPath),
	}
}

// TrackableFile reports whether a path should appear as untracked: an
// untracked file, or a directory containing one at any depth.
func (r *Repository) TrackableFile(path string, isDir bool) (bool, error) {
	if !isDir {
		return !r.Index.TrackedFile(path), nil
	}

	items, err := r.Workspace.ListDir(path)
	if err != nil {
		return false, err
	}

	// Check files before directories so cheap answers come first.
	for _, dirPass := range []bool{false, true} {
		for itemPath, itemStat := range items {
			if itemStat.IsDir() != dirPass {
				continue
			}
			trackable, err := r.TrackableFile(itemPath, itemStat.IsDir())
			if err != nil {
				return false, err
			}
			if trackable {
				return true, nil
			}
		}
	}
	return false, nil
}
