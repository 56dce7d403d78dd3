package repository

import (
	"os"
	"sort"

	"github.com/grit-vcs/grit/pkg/database"
	"github.com/grit-vcs/grit/pkg/index"
)

type ChangeType int

const (
	Added ChangeType = iota
	Deleted
	Modified
	Untracked
)

type changeKind int

const (
	indexKind changeKind = iota
	workspaceKind
)

// Status holds the computed differences between HEAD, the index, and the
// working tree.
type Status struct {
	repo *Repository

	Stats            map[string]os.FileInfo
	IndexChanges     map[string]ChangeType
	WorkspaceChanges map[string]ChangeType
	Conflicts        map[string][]uint16
	HeadTree         map[string]database.Entry

	changed   map[string]bool
	untracked map[string]bool
}

// Status scans the repository. The index must already be loaded; scanning
// may refresh stale index stat caches, so callers holding the index lock
// should write updates afterwards.
func (r *Repository) Status() (*Status, error) {
	s := &Status{
		repo:             r,
		Stats:            make(map[string]os.FileInfo),
		IndexChanges:     make(map[string]ChangeType),
		WorkspaceChanges: make(map[string]ChangeType),
		Conflicts:        make(map[string][]uint16),
		changed:          make(map[string]bool),
		untracked:        make(map[string]bool),
	}

	headOID, err := r.Refs.ReadHead()
	if err != nil {
		return nil, err
	}

	s.HeadTree, err = r.Database.LoadTreeList(headOID)
	if err != nil {
		return nil, err
	}

	if err := s.scanWorkspace(""); err != nil {
		return nil, err
	}
	if err := s.checkIndexEntries(); err != nil {
		return nil, err
	}
	s.collectDeletedHeadFiles()

	return s, nil
}

// Changed returns every path with an index or workspace change, sorted.
func (s *Status) Changed() []string {
	return sortedKeys(s.changed)
}

// UntrackedFiles returns untracked paths sorted; directories carry a
// trailing slash.
func (s *Status) UntrackedFiles() []string {
	return sortedKeys(s.untracked)
}

func (s *Status) scanWorkspace(prefix string) error {
	items, err := s.repo.Workspace.ListDir(prefix)
	if err != nil {
		return err
	}

	for path, stat := range items {
		if s.repo.Index.Tracked(path) {
			if stat.IsDir() {
				if err := s.scanWorkspace(path); err != nil {
					return err
				}
			} else {
				s.Stats[path] = stat
			}
			continue
		}

		trackable, err := s.repo.TrackableFile(path, stat.IsDir())
		if err != nil {
			return err
		}
		if trackable {
			if stat.IsDir() {
				path += "/"
			}
			s.untracked[path] = true
		}
	}
	return nil
}

func (s *Status) checkIndexEntries() error {
	for _, entry := range s.repo.Index.Entries() {
		if entry.Stage() > 0 {
			s.changed[entry.Path] = true
			s.Conflicts[entry.Path] = append(s.Conflicts[entry.Path], entry.Stage())
			continue
		}

		if err := s.checkIndexAgainstWorkspace(entry); err != nil {
			return err
		}
		s.checkIndexAgainstHeadTree(entry)
	}
	return nil
}

func (s *Status) checkIndexAgainstWorkspace(entry *index.Entry) error {
	stat := s.Stats[entry.Path]

	change, fresh, err := s.compareIndexToWorkspace(entry, stat)
	if err != nil {
		return err
	}

	if fresh {
		s.repo.Index.UpdateEntryStat(entry, stat)
	} else if change != nil {
		s.recordChange(entry.Path, workspaceKind, *change)
	}
	return nil
}

// compareIndexToWorkspace reports the change for an index entry, or
// fresh=true when the content is unchanged but the stat cache went stale.
func (s *Status) compareIndexToWorkspace(entry *index.Entry, stat os.FileInfo) (*ChangeType, bool, error) {
	if stat == nil {
		return changePtr(Deleted), false, nil
	}
	if !entry.StatMatch(stat) {
		return changePtr(Modified), false, nil
	}
	if entry.TimesMatch(stat) {
		return nil, false, nil
	}

	data, err := s.repo.Workspace.ReadFile(entry.Path)
	if err != nil {
		return nil, false, err
	}

	oid := s.repo.Database.HashObject(database.NewBlob(data))
	if entry.OID != oid {
		return changePtr(Modified), false, nil
	}
	return nil, true, nil
}

func (s *Status) checkIndexAgainstHeadTree(entry *index.Entry) {
	item, inHead := s.HeadTree[entry.Path]

	if !inHead {
		s.recordChange(entry.Path, indexKind, Added)
		return
	}
	if entry.Mode != item.Mode() || entry.OID != item.OID() {
		s.recordChange(entry.Path, indexKind, Modified)
	}
}

func (s *Status) collectDeletedHeadFiles() {
	for path := range s.HeadTree {
		if !s.repo.Index.TrackedFile(path) {
			s.recordChange(path, indexKind, Deleted)
		}
	}
}

func (s *Status) recordChange(path string, kind changeKind, change ChangeType) {
	s.changed[path] = true

	if kind == indexKind {
		s.IndexChanges[path] = change
	} else {
		s.WorkspaceChanges[path] = change
	}
}

func changePtr(c ChangeType) *ChangeType {
	return &c
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
