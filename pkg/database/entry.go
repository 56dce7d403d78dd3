package database

import (
	"path"
	"strings"
)

const (
	RegularMode    uint32 = 0o100644
	ExecutableMode uint32 = 0o100755
	TreeMode       uint32 = 0o40000
)

// Entry is a named reference to a stored object, as it appears inside a tree.
type Entry struct {
	Name string
	oid  string
	mode uint32
}

func NewEntry(name, oid string, mode uint32) Entry {
	return Entry{Name: name, oid: oid, mode: mode}
}

func (e Entry) OID() string {
	return e.oid
}

func (e Entry) Mode() uint32 {
	if e.mode&0o111 != 0 && e.mode != TreeMode {
		return ExecutableMode
	}
	return e.mode
}

func (e Entry) IsTree() bool {
	return e.mode == TreeMode
}

func (e Entry) Basename() string {
	return path.Base(e.Name)
}

// ParentDirectories lists every ancestor directory of the entry's path,
// shallowest first.
func (e Entry) ParentDirectories() []string {
	return ParentDirectories(e.Name)
}

// ParentDirectories returns the ancestor directories of a slash-separated
// path, shallowest first: "a/b/c.txt" yields ["a", "a/b"].
func ParentDirectories(name string) []string {
	var dirs []string
	parts := strings.Split(name, "/")
	for i := 1; i < len(parts); i++ {
		dirs = append(dirs, strings.Join(parts[:i], "/"))
	}
	return dirs
}
