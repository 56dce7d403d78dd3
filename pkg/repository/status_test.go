package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grit-vcs/grit/pkg/database"
)

func initRepo(t *testing.T) *Repository {
	t.Helper()
	root := t.TempDir()
	gitPath := filepath.Join(root, ".git")

	require.NoError(t, os.MkdirAll(filepath.Join(gitPath, "objects"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(gitPath, "refs", "heads"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gitPath, "HEAD"), []byte("ref: refs/heads/main\n"), 0o644))

	return New(gitPath)
}

func writeFile(t *testing.T, repo *Repository, path, data string) {
	t.Helper()
	abs := filepath.Join(repo.RootPath, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(data), 0o644))
}

func addAll(t *testing.T, repo *Repository) {
	t.Helper()
	require.NoError(t, repo.Index.LoadForUpdate())

	files, err := repo.Workspace.ListFiles("")
	require.NoError(t, err)

	for _, path := range files {
		data, err := repo.Workspace.ReadFile(path)
		require.NoError(t, err)
		stat, err := repo.Workspace.StatFile(path)
		require.NoError(t, err)

		blob := database.NewBlob(data)
		require.NoError(t, repo.Database.Store(blob))
		repo.Index.Add(path, database.OID(blob), stat)
	}

	require.NoError(t, repo.Index.WriteUpdates())
}

func commitAll(t *testing.T, repo *Repository, message string) {
	t.Helper()
	require.NoError(t, repo.Index.Load())

	var entries []database.Entry
	for _, entry := range repo.Index.Entries() {
		entries = append(entries, entry.DatabaseEntry())
	}

	tree := database.BuildTree(entries)
	require.NoError(t, tree.Traverse(func(tr *database.Tree) error {
		return repo.Database.Store(tr)
	}))

	parent, err := repo.Refs.ReadHead()
	require.NoError(t, err)

	author := database.NewAuthor("A. U. Thor", "author@example.com", time.Now())
	commit := database.NewCommit(parent, tree.OID(), author, message)
	require.NoError(t, repo.Database.Store(commit))
	require.NoError(t, repo.Refs.UpdateHead(database.OID(commit)))
}

func status(t *testing.T, repo *Repository) *Status {
	t.Helper()
	require.NoError(t, repo.Index.Load())
	s, err := repo.Status()
	require.NoError(t, err)
	return s
}

func TestStatusListsUntrackedFiles(t *testing.T) {
	repo := initRepo(t)
	writeFile(t, repo, "file.txt", "content")
	writeFile(t, repo, "another.txt", "more")

	s := status(t, repo)
	assert.Equal(t, []string{"another.txt", "file.txt"}, s.UntrackedFiles())
	assert.Empty(t, s.Changed())
}

func TestStatusListsUntrackedDirectoriesNotContents(t *testing.T) {
	repo := initRepo(t)
	writeFile(t, repo, "file.txt", "")
	writeFile(t, repo, "dir/another.txt", "")
	addAll(t, repo)
	commitAll(t, repo, "first")

	writeFile(t, repo, "newdir/inner/nested.txt", "")

	s := status(t, repo)
	assert.Equal(t, []string{"newdir/"}, s.UntrackedFiles())
}

func TestStatusIgnoresEmptyUntrackedDirectories(t *testing.T) {
	repo := initRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(repo.RootPath, "outer"), 0o755))

	s := status(t, repo)
	assert.Empty(t, s.UntrackedFiles())
}

func TestStatusReportsAddedFiles(t *testing.T) {
	repo := initRepo(t)
	writeFile(t, repo, "committed.txt", "x")
	addAll(t, repo)
	commitAll(t, repo, "first")

	writeFile(t, repo, "added.txt", "y")
	addAll(t, repo)

	s := status(t, repo)
	assert.Equal(t, map[string]ChangeType{"added.txt": Added}, s.IndexChanges)
	assert.Empty(t, s.WorkspaceChanges)
}

func TestStatusReportsModifiedWorkspaceFiles(t *testing.T) {
	repo := initRepo(t)
	writeFile(t, repo, "file.txt", "original")
	addAll(t, repo)
	commitAll(t, repo, "first")

	writeFile(t, repo, "file.txt", "changed content with another size")

	s := status(t, repo)
	assert.Equal(t, map[string]ChangeType{"file.txt": Modified}, s.WorkspaceChanges)
	assert.Empty(t, s.IndexChanges)
}

func TestStatusReportsContentChangeWithSameSize(t *testing.T) {
	repo := initRepo(t)
	writeFile(t, repo, "file.txt", "one")
	addAll(t, repo)
	commitAll(t, repo, "first")

	writeFile(t, repo, "file.txt", "two")
	// Force the stat cache to look fresh so detection must hash the content.
	abs := filepath.Join(repo.RootPath, "file.txt")
	stale := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(abs, stale, stale))

	s := status(t, repo)
	assert.Equal(t, map[string]ChangeType{"file.txt": Modified}, s.WorkspaceChanges)
}

func TestStatusReportsDeletedWorkspaceFiles(t *testing.T) {
	repo := initRepo(t)
	writeFile(t, repo, "file.txt", "x")
	addAll(t, repo)
	commitAll(t, repo, "first")

	require.NoError(t, os.Remove(filepath.Join(repo.RootPath, "file.txt")))

	s := status(t, repo)
	assert.Equal(t, map[string]ChangeType{"file.txt": Deleted}, s.WorkspaceChanges)
}

func TestStatusReportsFilesDeletedFromIndex(t *testing.T) {
	repo := initRepo(t)
	writeFile(t, repo, "a.txt", "a")
	writeFile(t, repo, "b.txt", "b")
	addAll(t, repo)
	commitAll(t, repo, "first")

	require.NoError(t, repo.Index.LoadForUpdate())
	repo.Index.Remove("b.txt")
	require.NoError(t, repo.Index.WriteUpdates())
	require.NoError(t, repo.Workspace.Remove("b.txt"))

	s := status(t, repo)
	assert.Equal(t, map[string]ChangeType{"b.txt": Deleted}, s.IndexChanges)
}

func TestStatusCleanAfterCommit(t *testing.T) {
	repo := initRepo(t)
	writeFile(t, repo, "a.txt", "a")
	writeFile(t, repo, "dir/b.txt", "b")
	addAll(t, repo)
	commitAll(t, repo, "first")

	s := status(t, repo)
	assert.Empty(t, s.Changed())
	assert.Empty(t, s.UntrackedFiles())
}

func TestStatusModifiedIndexVsHead(t *testing.T) {
	repo := initRepo(t)
	writeFile(t, repo, "file.txt", "before")
	addAll(t, repo)
	commitAll(t, repo, "first")

	writeFile(t, repo, "file.txt", "after-with-different-size")
	addAll(t, repo)

	s := status(t, repo)
	assert.Equal(t, map[string]ChangeType{"file.txt": Modified}, s.IndexChanges)
	assert.Empty(t, s.WorkspaceChanges)
}
