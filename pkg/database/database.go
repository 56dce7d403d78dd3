package database

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// InvalidObjectError reports an object of the wrong kind for an operation.
type InvalidObjectError struct {
	OID  string
	Want string
	Got  string
}

func (e *InvalidObjectError) Error() string {
	return fmt.Sprintf("object %s is a %s, not a %s", e.OID, e.Got, e.Want)
}

// Database stores and loads loose objects under a `.git/objects` directory.
type Database struct {
	pathname string
}

func New(pathname string) *Database {
	return &Database{pathname: pathname}
}

// Store writes an object to disk. Objects that already exist are left alone.
func (d *Database) Store(o Object) error {
	return d.writeObject(OID(o), Content(o))
}

// HashObject returns the id an object would be stored under.
func (d *Database) HashObject(o Object) string {
	return OID(o)
}

// Load reads an object and returns it as a *Blob, *Tree, or *Commit.
func (d *Database) Load(oid string) (Object, error) {
	data, err := os.ReadFile(d.objectPath(oid))
	if err != nil {
		return nil, fmt.Errorf("loading object %s: %w", oid, err)
	}

	z, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompressing object %s: %w", oid, err)
	}
	defer z.Close()

	raw, err := io.ReadAll(z)
	if err != nil {
		return nil, fmt.Errorf("decompressing object %s: %w", oid, err)
	}

	header, body, found := bytes.Cut(raw, []byte{0})
	if !found {
		return nil, fmt.Errorf("object %s: malformed header", oid)
	}
	objectType, _, _ := strings.Cut(string(header), " ")

	switch objectType {
	case "blob":
		return NewBlob(body), nil
	case "tree":
		return ParseTree(body)
	case "commit":
		return ParseCommit(body)
	default:
		return nil, fmt.Errorf("object %s: unknown type %q", oid, objectType)
	}
}

func (d *Database) LoadBlob(oid string) (*Blob, error) {
	o, err := d.Load(oid)
	if err != nil {
		return nil, err
	}
	blob, ok := o.(*Blob)
	if !ok {
		return nil, &InvalidObjectError{OID: oid, Want: "blob", Got: o.Type()}
	}
	return blob, nil
}

func (d *Database) LoadTree(oid string) (*Tree, error) {
	o, err := d.Load(oid)
	if err != nil {
		return nil, err
	}
	tree, ok := o.(*Tree)
	if !ok {
		return nil, &InvalidObjectError{OID: oid, Want: "tree", Got: o.Type()}
	}
	return tree, nil
}

func (d *Database) LoadCommit(oid string) (*Commit, error) {
	o, err := d.Load(oid)
	if err != nil {
		return nil, err
	}
	commit, ok := o.(*Commit)
	if !ok {
		return nil, &InvalidObjectError{OID: oid, Want: "commit", Got: o.Type()}
	}
	return commit, nil
}

// PrefixMatch expands an abbreviated object id to all stored ids that share
// its prefix.
func (d *Database) PrefixMatch(name string) ([]string, error) {
	if len(name) < 2 {
		return nil, nil
	}

	dirname := filepath.Dir(d.objectPath(name))
	entries, err := os.ReadDir(dirname)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var oids []string
	for _, entry := range entries {
		oid := filepath.Base(dirname) + entry.Name()
		if strings.HasPrefix(oid, name) {
			oids = append(oids, oid)
		}
	}
	return oids, nil
}

// LoadTreeList flattens the tree of a commit (or a tree oid) into a map of
// full path to entry. An empty oid yields an empty map.
func (d *Database) LoadTreeList(oid string) (map[string]Entry, error) {
	list := make(map[string]Entry)
	if oid == "" {
		return list, nil
	}

	tree, err := d.oidToTree(oid)
	if err != nil {
		return nil, err
	}
	if err := d.readTreeList(tree, "", list); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *Database) readTreeList(tree *Tree, prefix string, list map[string]Entry) error {
	for name, entry := range tree.Entries() {
		fullPath := joinPath(prefix, name)

		if entry.IsTree() {
			subtree, err := d.LoadTree(entry.OID())
			if err != nil {
				return err
			}
			if err := d.readTreeList(subtree, fullPath, list); err != nil {
				return err
			}
		} else {
			list[fullPath] = NewEntry(fullPath, entry.OID(), entry.Mode())
		}
	}
	return nil
}

func (d *Database) objectPath(oid string) string {
	return filepath.Join(d.pathname, oid[:2], oid[2:])
}

func (d *Database) writeObject(oid string, content []byte) error {
	objectPath := d.objectPath(oid)
	if _, err := os.Stat(objectPath); err == nil {
		return nil
	}

	dirname := filepath.Dir(objectPath)
	if err := os.MkdirAll(dirname, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dirname, err)
	}

	tempPath := filepath.Join(dirname, uuid.NewString())
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tempPath, err)
	}

	encoder, err := zlib.NewWriterLevel(file, zlib.BestSpeed)
	if err != nil {
		file.Close()
		return err
	}
	if _, err := encoder.Write(content); err != nil {
		file.Close()
		return fmt.Errorf("writing object %s: %w", oid, err)
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return fmt.Errorf("writing object %s: %w", oid, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing object %s: %w", oid, err)
	}

	if err := os.Rename(tempPath, objectPath); err != nil {
		return fmt.Errorf("storing object %s: %w", oid, err)
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
