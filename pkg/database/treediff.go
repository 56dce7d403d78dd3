package database

// Change holds the two sides of a single path in a tree diff. A nil side
// means the path is absent from that tree.
type Change struct {
	Old *Entry
	New *Entry
}

// Changes maps changed paths to their old and new entries.
type Changes map[string]Change

// TreeDiff compares two tree-ish oids (commits or trees, either may be
// empty) and reports every added, deleted, or modified path.
func (d *Database) TreeDiff(a, b string) (Changes, error) {
	diff := &treeDiff{database: d, changes: make(Changes)}
	if err := diff.compareOIDs(a, b, ""); err != nil {
		return nil, err
	}
	return diff.changes, nil
}

type treeDiff struct {
	database *Database
	changes  Changes
}

func (t *treeDiff) compareOIDs(a, b, prefix string) error {
	if a == b {
		return nil
	}

	aEntries, err := t.treeEntries(a)
	if err != nil {
		return err
	}
	bEntries, err := t.treeEntries(b)
	if err != nil {
		return err
	}

	if err := t.detectDeletions(aEntries, bEntries, prefix); err != nil {
		return err
	}
	return t.detectAdditions(aEntries, bEntries, prefix)
}

func (t *treeDiff) treeEntries(oid string) (map[string]TreeEntry, error) {
	if oid == "" {
		return nil, nil
	}
	tree, err := t.database.oidToTree(oid)
	if err != nil {
		return nil, err
	}
	return tree.Entries(), nil
}

// oidToTree chases a commit to its tree; a tree oid loads directly.
func (d *Database) oidToTree(oid string) (*Tree, error) {
	o, err := d.Load(oid)
	if err != nil {
		return nil, err
	}

	switch obj := o.(type) {
	case *Commit:
		return d.LoadTree(obj.TreeOID)
	case *Tree:
		return obj, nil
	default:
		return nil, &InvalidObjectError{OID: oid, Want: "tree", Got: o.Type()}
	}
}

func (t *treeDiff) detectDeletions(a, b map[string]TreeEntry, prefix string) error {
	for name, entry := range a {
		other, inB := b[name]
		if inB && sameEntry(entry, other) {
			continue
		}

		fullPath := joinPath(prefix, name)

		treeA, treeB := "", ""
		if entry.IsTree() {
			treeA = entry.OID()
		}
		if inB && other.IsTree() {
			treeB = other.OID()
		}
		if err := t.compareOIDs(treeA, treeB, fullPath); err != nil {
			return err
		}

		var blobA, blobB *Entry
		if !entry.IsTree() {
			e := NewEntry(fullPath, entry.OID(), entry.Mode())
			blobA = &e
		}
		if inB && !other.IsTree() {
			e := NewEntry(fullPath, other.OID(), other.Mode())
			blobB = &e
		}

		if blobA != nil || blobB != nil {
			t.changes[fullPath] = Change{Old: blobA, New: blobB}
		}
	}
	return nil
}

func (t *treeDiff) detectAdditions(a, b map[string]TreeEntry, prefix string) error {
	for name, entry := range b {
		if _, inA := a[name]; inA {
			continue
		}

		fullPath := joinPath(prefix, name)

		if entry.IsTree() {
			if err := t.compareOIDs("", entry.OID(), fullPath); err != nil {
				return err
			}
		} else {
			e := NewEntry(fullPath, entry.OID(), entry.Mode())
			t.changes[fullPath] = Change{New: &e}
		}
	}
	return nil
}

func sameEntry(a, b TreeEntry) bool {
	return a.OID() == b.OID() && a.Mode() == b.Mode()
}
