// Package index implements the staging area: a sorted set of entries backed
// by git's DIRC v2 binary format and updated through the lockfile protocol.
package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/grit-vcs/grit/pkg/lockfile"
)

const (
	signature  = "DIRC"
	version    = 2
	headerSize = 12
	// Entries are at least 64 bytes and padded in 8-byte blocks.
	entryMinSize   = 64
	entryBlockSize = 8
)

var (
	ErrInvalidSignature = errors.New("index: bad signature")
	ErrInvalidVersion   = errors.New("index: unsupported version")
	ErrInvalidChecksum  = errors.New("index: checksum does not match stored value")
)

type entryKey struct {
	path  string
	stage uint16
}

type Index struct {
	pathname string
	entries  map[entryKey]*Entry
	parents  map[string]map[string]bool
	lock     *lockfile.Lockfile
	changed  bool
}

func New(pathname string) *Index {
	idx := &Index{
		pathname: pathname,
		lock:     lockfile.New(pathname),
	}
	idx.clear()
	return idx
}

// Load reads the index file from disk, replacing in-memory state. A missing
// file loads as an empty index.
func (idx *Index) Load() error {
	idx.clear()

	file, err := os.Open(idx.pathname)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening index: %w", err)
	}
	defer file.Close()

	reader := newChecksumReader(file)
	count, err := idx.readHeader(reader)
	if err != nil {
		return err
	}
	if err := idx.readEntries(reader, count); err != nil {
		return err
	}
	return reader.verify()
}

// LoadForUpdate acquires the index lock before loading, so the caller can
// write changes back with WriteUpdates.
func (idx *Index) LoadForUpdate() error {
	if err := idx.lock.Hold(); err != nil {
		return err
	}
	return idx.Load()
}

// WriteUpdates persists the index if it changed, or releases the lock if
// nothing did.
func (idx *Index) WriteUpdates() error {
	if !idx.changed {
		return idx.lock.Rollback()
	}

	writer := newChecksumWriter(idx.lock)

	header := make([]byte, 0, headerSize)
	header = append(header, signature...)
	header = binary.BigEndian.AppendUint32(header, version)
	header = binary.BigEndian.AppendUint32(header, uint32(len(idx.entries)))
	if err := writer.write(header); err != nil {
		return err
	}

	for _, entry := range idx.Entries() {
		if err := writer.write(entry.bytes()); err != nil {
			return err
		}
	}

	if err := writer.writeChecksum(); err != nil {
		return err
	}
	if err := idx.lock.Commit(); err != nil {
		return err
	}

	idx.changed = false
	return nil
}

func (idx *Index) ReleaseLock() error {
	return idx.lock.Rollback()
}

// Add stages a file, replacing conflicting entries: parent directories
// staged as files and any children beneath the path.
func (idx *Index) Add(path, oid string, stat os.FileInfo) {
	for stage := uint16(1); stage <= 3; stage++ {
		idx.removeEntryWithStage(path, stage)
	}

	entry := newEntry(path, oid, stat)
	idx.discardConflicts(entry)
	idx.storeEntry(entry)
	idx.changed = true
}

// Remove unstages a path and everything beneath it.
func (idx *Index) Remove(path string) {
	idx.removeEntry(path)
	idx.removeChildren(path)
	idx.changed = true
}

// Entries returns all entries ordered by (path, stage).
func (idx *Index) Entries() []*Entry {
	keys := make([]entryKey, 0, len(idx.entries))
	for key := range idx.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].path != keys[j].path {
			return keys[i].path < keys[j].path
		}
		return keys[i].stage < keys[j].stage
	})

	entries := make([]*Entry, len(keys))
	for i, key := range keys {
		entries[i] = idx.entries[key]
	}
	return entries
}

// EntryForPath returns the stage-0 entry for a path, or nil.
func (idx *Index) EntryForPath(path string) *Entry {
	return idx.entries[entryKey{path: path, stage: 0}]
}

// TrackedFile reports whether any stage of the path is in the index.
func (idx *Index) TrackedFile(path string) bool {
	for stage := uint16(0); stage <= 3; stage++ {
		if _, ok := idx.entries[entryKey{path: path, stage: stage}]; ok {
			return true
		}
	}
	return false
}

// Tracked reports whether the path is a tracked file or a directory
// containing tracked files.
func (idx *Index) Tracked(path string) bool {
	if idx.TrackedFile(path) {
		return true
	}
	_, ok := idx.parents[path]
	return ok
}

// UpdateEntryStat refreshes an entry's stat cache and marks the index dirty.
func (idx *Index) UpdateEntryStat(entry *Entry, stat os.FileInfo) {
	entry.UpdateStat(stat)
	idx.changed = true
}

func (idx *Index) clear() {
	idx.entries = make(map[entryKey]*Entry)
	idx.parents = make(map[string]map[string]bool)
	idx.changed = false
}

func (idx *Index) readHeader(reader *checksumReader) (uint32, error) {
	data, err := reader.read(headerSize)
	if err != nil {
		return 0, err
	}

	if string(data[:4]) != signature {
		return 0, fmt.Errorf("%w: expected %q, got %q", ErrInvalidSignature, signature, data[:4])
	}
	if v := binary.BigEndian.Uint32(data[4:8]); v != version {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrInvalidVersion, version, v)
	}
	return binary.BigEndian.Uint32(data[8:12]), nil
}

func (idx *Index) readEntries(reader *checksumReader, count uint32) error {
	for i := uint32(0); i < count; i++ {
		data, err := reader.read(entryMinSize)
		if err != nil {
			return err
		}

		for data[len(data)-1] != 0 {
			block, err := reader.read(entryBlockSize)
			if err != nil {
				return err
			}
			data = append(data, block...)
		}

		entry, err := parseEntry(data)
		if err != nil {
			return err
		}
		idx.storeEntry(entry)
	}
	return nil
}

func (idx *Index) storeEntry(entry *Entry) {
	for _, parent := range entry.parentDirectories() {
		children, ok := idx.parents[parent]
		if !ok {
			children = make(map[string]bool)
			idx.parents[parent] = children
		}
		children[entry.Path] = true
	}
	idx.entries[entry.key()] = entry
}

func (idx *Index) discardConflicts(entry *Entry) {
	for _, parent := range entry.parentDirectories() {
		idx.removeEntry(parent)
	}
	idx.removeChildren(entry.Path)
}

func (idx *Index) removeChildren(path string) {
	children := idx.parents[path]

	var toRemove []string
	for child := range children {
		toRemove = append(toRemove, child)
	}
	for _, child := range toRemove {
		idx.removeEntry(child)
	}
}

func (idx *Index) removeEntry(path string) {
	for stage := uint16(0); stage <= 3; stage++ {
		idx.removeEntryWithStage(path, stage)
	}
}

func (idx *Index) removeEntryWithStage(path string, stage uint16) {
	entry, ok := idx.entries[entryKey{path: path, stage: stage}]
	if !ok {
		return
	}
	delete(idx.entries, entry.key())

	for _, dirname := range entry.parentDirectories() {
		if children, ok := idx.parents[dirname]; ok {
			delete(children, path)
			if len(children) == 0 {
				delete(idx.parents, dirname)
			}
		}
	}
}
