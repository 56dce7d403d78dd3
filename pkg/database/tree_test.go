package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Directory names sort as `name + "/"`, so `test.txt` < `test/` < `test:txt`.
func TestTreeBytesSortOrder(t *testing.T) {
	tree := NewTree()
	tree.entries["test:txt"] = NewEntry("test:txt", "", RegularMode)
	tree.entries["test.txt"] = NewEntry("test.txt", "", RegularMode)
	tree.entries["test"] = NewEntry("test", "", TreeMode)

	assert.Equal(t, "100644 test.txt\x0040000 test\x00100644 test:txt\x00", string(tree.Bytes()))
}

func TestBuildTreeNestsDirectories(t *testing.T) {
	tree := BuildTree([]Entry{
		NewEntry("a.txt", "aaaa", RegularMode),
		NewEntry("nested/b.txt", "bbbb", RegularMode),
		NewEntry("nested/inner/c.txt", "cccc", ExecutableMode),
	})

	require.Contains(t, tree.Entries(), "a.txt")
	nested, ok := tree.Entries()["nested"].(*Tree)
	require.True(t, ok)
	require.Contains(t, nested.Entries(), "b.txt")

	inner, ok := nested.Entries()["inner"].(*Tree)
	require.True(t, ok)
	entry, ok := inner.Entries()["c.txt"].(Entry)
	require.True(t, ok)
	assert.Equal(t, ExecutableMode, entry.Mode())
}

func TestTreeParseRoundTrip(t *testing.T) {
	blob := NewBlob([]byte("data"))
	tree := BuildTree([]Entry{
		NewEntry("a.txt", OID(blob), RegularMode),
		NewEntry("dir/b.txt", OID(blob), RegularMode),
	})

	var oids []string
	require.NoError(t, tree.Traverse(func(t *Tree) error {
		oids = append(oids, t.OID())
		return nil
	}))
	// Bottom-up traversal visits the subtree before the root.
	require.Len(t, oids, 2)
	assert.Equal(t, tree.OID(), oids[1])

	parsed, err := ParseTree(tree.Bytes())
	require.NoError(t, err)
	assert.Equal(t, tree.OID(), parsed.OID())
	assert.True(t, parsed.Entries()["dir"].IsTree())
}

func TestCommitBytesLayout(t *testing.T) {
	author := NewAuthor("Alice", "alice@example.com", time.Unix(1600000000, 0).UTC())
	commit := NewCommit("", "abc123", author, "message")

	expected := "tree abc123\n" +
		"author Alice <alice@example.com> 1600000000 +0000\n" +
		"committer Alice <alice@example.com> 1600000000 +0000\n" +
		"\n" +
		"message"
	assert.Equal(t, expected, string(commit.Bytes()))

	withParent := NewCommit("def456", "abc123", author, "message")
	assert.Contains(t, string(withParent.Bytes()), "\nparent def456\n")
}

func TestParentDirectories(t *testing.T) {
	assert.Nil(t, ParentDirectories("top.txt"))
	assert.Equal(t, []string{"a", "a/b"}, ParentDirectories("a/b/c.txt"))
}

func TestAuthorRoundTrip(t *testing.T) {
	author := NewAuthor("Bob", "bob@example.com", time.Unix(1700000000, 0).UTC())

	parsed, err := ParseAuthor(author.String())
	require.NoError(t, err)
	assert.Equal(t, "Bob", parsed.Name)
	assert.Equal(t, "bob@example.com", parsed.Email)
	assert.Equal(t, author.Time.Unix(), parsed.Time.Unix())
}
