package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grit-vcs/grit/pkg/database"
	"github.com/grit-vcs/grit/pkg/diff"
	"github.com/grit-vcs/grit/pkg/index"
	"github.com/grit-vcs/grit/pkg/repository"
)

const (
	nullOID  = "0000000000000000000000000000000000000000"
	nullPath = "/dev/null"
)

type diffOptions struct {
	cached bool
}

// diffTarget is one side of a file comparison: a blob in the index or
// HEAD, the working tree copy, or nothing at all for added/deleted files.
type diffTarget struct {
	path string
	oid  string
	mode uint32
	data []byte
}

func (t diffTarget) exists() bool {
	return t.oid != nullOID
}

func (t diffTarget) diffPath(prefix string) string {
	if !t.exists() {
		return nullPath
	}
	return prefix + t.path
}

// NewDiffCmd creates the `diff` command.
func NewDiffCmd(env *Env) *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show changes between the index and the working tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(env, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.cached, "cached", false, "compare the index with HEAD")
	return cmd
}

func runDiff(env *Env, opts *diffOptions) error {
	repo := env.Repo()

	if err := repo.Index.Load(); err != nil {
		return env.Fatal(128, "%s", err)
	}

	status, err := repo.Status()
	if err != nil {
		return env.Fatal(128, "%s", err)
	}

	if opts.cached {
		return printIndexDiff(env, repo, status)
	}
	return printWorkspaceDiff(env, repo, status)
}

func printIndexDiff(env *Env, repo *repository.Repository, status *repository.Status) error {
	for _, path := range sortedChangePaths(status.IndexChanges) {
		var a, b diffTarget
		var err error

		switch status.IndexChanges[path] {
		case repository.Added:
			a = targetFromNothing(path)
			b, err = targetFromIndex(repo, path)
		case repository.Modified:
			a, err = targetFromHead(repo, status, path)
			if err == nil {
				b, err = targetFromIndex(repo, path)
			}
		case repository.Deleted:
			a, err = targetFromHead(repo, status, path)
			b = targetFromNothing(path)
		}
		if err != nil {
			return env.Fatal(128, "%s", err)
		}

		printDiff(env, a, b)
	}
	return nil
}

func printWorkspaceDiff(env *Env, repo *repository.Repository, status *repository.Status) error {
	for _, path := range sortedChangePaths(status.WorkspaceChanges) {
		var a, b diffTarget
		var err error

		switch status.WorkspaceChanges[path] {
		case repository.Modified:
			a, err = targetFromIndex(repo, path)
			if err == nil {
				b, err = targetFromFile(repo, status, path)
			}
		case repository.Deleted:
			a, err = targetFromIndex(repo, path)
			b = targetFromNothing(path)
		}
		if err != nil {
			return env.Fatal(128, "%s", err)
		}

		printDiff(env, a, b)
	}
	return nil
}

func targetFromHead(repo *repository.Repository, status *repository.Status, path string) (diffTarget, error) {
	entry := status.HeadTree[path]

	blob, err := repo.Database.LoadBlob(entry.OID())
	if err != nil {
		return diffTarget{}, err
	}
	return diffTarget{path: path, oid: entry.OID(), mode: entry.Mode(), data: blob.Data}, nil
}

func targetFromIndex(repo *repository.Repository, path string) (diffTarget, error) {
	entry := repo.Index.EntryForPath(path)

	blob, err := repo.Database.LoadBlob(entry.OID)
	if err != nil {
		return diffTarget{}, err
	}
	return diffTarget{path: path, oid: entry.OID, mode: entry.Mode, data: blob.Data}, nil
}

func targetFromFile(repo *repository.Repository, status *repository.Status, path string) (diffTarget, error) {
	data, err := repo.Workspace.ReadFile(path)
	if err != nil {
		return diffTarget{}, err
	}

	blob := database.NewBlob(data)
	return diffTarget{
		path: path,
		oid:  repo.Database.HashObject(blob),
		mode: index.ModeForStat(status.Stats[path]),
		data: data,
	}, nil
}

func targetFromNothing(path string) diffTarget {
	return diffTarget{path: path, oid: nullOID}
}

func printDiff(env *Env, a, b diffTarget) {
	if a.oid == b.oid && a.mode == b.mode {
		return
	}

	fmt.Fprintf(env.Out, "diff --git %s %s\n", "a/"+a.path, "b/"+b.path)
	printDiffMode(env, a, b)
	printDiffContent(env, a, b)
}

func printDiffMode(env *Env, a, b diffTarget) {
	switch {
	case a.mode == 0:
		fmt.Fprintf(env.Out, "new file mode %o\n", b.mode)
	case b.mode == 0:
		fmt.Fprintf(env.Out, "deleted file mode %o\n", a.mode)
	case a.mode != b.mode:
		fmt.Fprintf(env.Out, "old mode %o\n", a.mode)
		fmt.Fprintf(env.Out, "new mode %o\n", b.mode)
	}
}

func printDiffContent(env *Env, a, b diffTarget) {
	if a.oid == b.oid {
		return
	}

	oidRange := fmt.Sprintf("index %s..%s", database.ShortOID(a.oid), database.ShortOID(b.oid))
	if a.mode == b.mode {
		oidRange += fmt.Sprintf(" %o", a.mode)
	}

	fmt.Fprintln(env.Out, oidRange)
	fmt.Fprintf(env.Out, "--- %s\n", a.diffPath("a/"))
	fmt.Fprintf(env.Out, "+++ %s\n", b.diffPath("b/"))

	for _, hunk := range diff.DiffHunks(string(a.data), string(b.data)) {
		fmt.Fprintln(env.Out, cyan(hunk.Header()))
		for _, edit := range hunk.Edits {
			switch edit.Type {
			case diff.Ins:
				fmt.Fprintln(env.Out, green(edit.String()))
			case diff.Del:
				fmt.Fprintln(env.Out, red(edit.String()))
			default:
				fmt.Fprintln(env.Out, edit.String())
			}
		}
	}
}
