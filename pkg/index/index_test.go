package index

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStat(t *testing.T) os.FileInfo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	stat, err := os.Stat(path)
	require.NoError(t, err)
	return stat
}

func randomOID(seed string) string {
	sum := sha1.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])
}

func paths(idx *Index) []string {
	var out []string
	for _, entry := range idx.Entries() {
		out = append(out, entry.Path)
	}
	return out
}

func TestAddSingleFile(t *testing.T) {
	idx := New(filepath.Join(t.TempDir(), "index"))

	idx.Add("alice.txt", randomOID("a"), tempStat(t))

	assert.Equal(t, []string{"alice.txt"}, paths(idx))
}

func TestReplaceFileWithDirectory(t *testing.T) {
	idx := New(filepath.Join(t.TempDir(), "index"))
	stat := tempStat(t)

	idx.Add("alice.txt", randomOID("a"), stat)
	idx.Add("bob.txt", randomOID("b"), stat)
	idx.Add("alice.txt/nested", randomOID("c"), stat)

	assert.Equal(t, []string{"alice.txt/nested", "bob.txt"}, paths(idx))
}

func TestReplaceDirectoryWithFile(t *testing.T) {
	idx := New(filepath.Join(t.TempDir(), "index"))
	stat := tempStat(t)

	idx.Add("alice.txt", randomOID("a"), stat)
	idx.Add("nested/bob.txt", randomOID("b"), stat)
	idx.Add("nested", randomOID("c"), stat)

	assert.Equal(t, []string{"alice.txt", "nested"}, paths(idx))
}

func TestRecursivelyReplaceDirectoryWithFile(t *testing.T) {
	idx := New(filepath.Join(t.TempDir(), "index"))
	stat := tempStat(t)

	idx.Add("alice.txt", randomOID("a"), stat)
	idx.Add("nested/bob.txt", randomOID("b"), stat)
	idx.Add("nested/inner/claire.txt", randomOID("c"), stat)
	idx.Add("nested", randomOID("d"), stat)

	assert.Equal(t, []string{"alice.txt", "nested"}, paths(idx))
}

func TestTrackedQueries(t *testing.T) {
	idx := New(filepath.Join(t.TempDir(), "index"))

	idx.Add("nested/inner/claire.txt", randomOID("c"), tempStat(t))

	assert.True(t, idx.TrackedFile("nested/inner/claire.txt"))
	assert.False(t, idx.TrackedFile("nested"))
	assert.True(t, idx.Tracked("nested"))
	assert.True(t, idx.Tracked("nested/inner"))
	assert.False(t, idx.Tracked("other"))
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")
	stat := tempStat(t)

	idx := New(path)
	require.NoError(t, idx.LoadForUpdate())
	idx.Add("alice.txt", randomOID("a"), stat)
	idx.Add("nested/bob.txt", randomOID("b"), stat)
	require.NoError(t, idx.WriteUpdates())

	loaded := New(path)
	require.NoError(t, loaded.Load())

	assert.Equal(t, []string{"alice.txt", "nested/bob.txt"}, paths(loaded))
	entry := loaded.EntryForPath("alice.txt")
	require.NotNil(t, entry)
	assert.Equal(t, randomOID("a"), entry.OID)
	assert.True(t, loaded.Tracked("nested"))
}

func TestRemoveDropsChildren(t *testing.T) {
	idx := New(filepath.Join(t.TempDir(), "index"))
	stat := tempStat(t)

	idx.Add("a.txt", randomOID("a"), stat)
	idx.Add("dir/b.txt", randomOID("b"), stat)

	idx.Remove("dir")
	assert.Equal(t, []string{"a.txt"}, paths(idx))
	assert.False(t, idx.Tracked("dir"))
}

func TestUnchangedIndexRollsBackLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")

	idx := New(path)
	require.NoError(t, idx.LoadForUpdate())
	require.NoError(t, idx.WriteUpdates())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no index should be written when nothing changed")
	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadRejectsCorruptIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")
	stat := tempStat(t)

	idx := New(path)
	require.NoError(t, idx.LoadForUpdate())
	idx.Add("alice.txt", randomOID("a"), stat)
	require.NoError(t, idx.WriteUpdates())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	assert.ErrorIs(t, New(path).Load(), ErrInvalidChecksum)
}
