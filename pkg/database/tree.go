package database

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strconv"
)

// TreeEntry is either a file Entry or a nested *Tree.
type TreeEntry interface {
	OID() string
	Mode() uint32
	IsTree() bool
}

type Tree struct {
	entries map[string]TreeEntry
}

func NewTree() *Tree {
	return &Tree{entries: make(map[string]TreeEntry)}
}

// BuildTree arranges flat index entries into a nested tree, creating
// intermediate trees for every directory component.
func BuildTree(entries []Entry) *Tree {
	root := NewTree()
	for _, entry := range entries {
		root.addEntry(entry.ParentDirectories(), entry)
	}
	return root
}

func (t *Tree) Type() string {
	return "tree"
}

func (t *Tree) OID() string {
	return OID(t)
}

func (t *Tree) Mode() uint32 {
	return TreeMode
}

func (t *Tree) IsTree() bool {
	return true
}

func (t *Tree) Entries() map[string]TreeEntry {
	return t.entries
}

// EntryNames returns the entry names in tree serialization order, where
// directory names compare as `name + "/"`.
func (t *Tree) EntryNames() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return t.sortKey(names[i]) < t.sortKey(names[j])
	})
	return names
}

func (t *Tree) Bytes() []byte {
	var buf bytes.Buffer
	for _, name := range t.EntryNames() {
		entry := t.entries[name]
		fmt.Fprintf(&buf, "%o %s\x00", entry.Mode(), name)

		oid, _ := hex.DecodeString(entry.OID())
		buf.Write(oid)
	}
	return buf.Bytes()
}

// Traverse visits every subtree bottom-up, finishing with the receiver.
func (t *Tree) Traverse(fn func(*Tree) error) error {
	for _, entry := range t.entries {
		if subtree, ok := entry.(*Tree); ok {
			if err := subtree.Traverse(fn); err != nil {
				return err
			}
		}
	}
	return fn(t)
}

// ParseTree reads the serialized body of a tree object.
func ParseTree(data []byte) (*Tree, error) {
	tree := NewTree()

	for len(data) > 0 {
		space := bytes.IndexByte(data, ' ')
		if space < 0 {
			return nil, fmt.Errorf("malformed tree entry: missing mode")
		}
		mode, err := strconv.ParseUint(string(data[:space]), 8, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed tree entry mode: %w", err)
		}
		data = data[space+1:]

		nul := bytes.IndexByte(data, 0)
		if nul < 0 || len(data) < nul+21 {
			return nil, fmt.Errorf("malformed tree entry: truncated")
		}
		name := string(data[:nul])
		oid := hex.EncodeToString(data[nul+1 : nul+21])
		data = data[nul+21:]

		tree.entries[name] = NewEntry(name, oid, uint32(mode))
	}

	return tree, nil
}

func (t *Tree) sortKey(name string) string {
	if t.entries[name].IsTree() {
		return name + "/"
	}
	return name
}

func (t *Tree) addEntry(parents []string, entry Entry) {
	if len(parents) == 0 {
		t.entries[entry.Basename()] = entry
		return
	}

	key := path.Base(parents[0])
	if subtree, ok := t.entries[key].(*Tree); ok {
		subtree.addEntry(parents[1:], entry)
	} else {
		subtree := NewTree()
		subtree.addEntry(parents[1:], entry)
		t.entries[key] = subtree
	}
}
