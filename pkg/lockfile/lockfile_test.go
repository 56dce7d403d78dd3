package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitReplacesTargetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	lock := New(path)
	require.NoError(t, lock.Hold())
	require.NoError(t, lock.Write([]byte("new")))
	require.NoError(t, lock.Commit())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestHoldDeniedWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")

	first := New(path)
	require.NoError(t, first.Hold())

	second := New(path)
	err := second.Hold()
	assert.ErrorIs(t, err, ErrLockDenied)

	require.NoError(t, first.Rollback())
	assert.NoError(t, second.Hold())
	require.NoError(t, second.Rollback())
}

func TestWriteWithoutLock(t *testing.T) {
	lock := New(filepath.Join(t.TempDir(), "HEAD"))
	assert.ErrorIs(t, lock.Write([]byte("oid")), ErrStaleLock)
	assert.ErrorIs(t, lock.Commit(), ErrStaleLock)
}

func TestRollbackDiscardsLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "HEAD")

	lock := New(path)
	require.NoError(t, lock.Hold())
	require.NoError(t, lock.Write([]byte("abc")))
	require.NoError(t, lock.Rollback())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err))
}
