package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grit-vcs/grit/pkg/database"
	"github.com/grit-vcs/grit/pkg/lockfile"
	"github.com/grit-vcs/grit/pkg/repository"
	"github.com/grit-vcs/grit/pkg/workspace"
)

// NewAddCmd creates the `add` command.
func NewAddCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <pathspec>...",
		Short: "Add file contents to the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(env, args)
		},
	}
}

func runAdd(env *Env, args []string) error {
	repo := env.Repo()

	if err := repo.Index.LoadForUpdate(); err != nil {
		if errors.Is(err, lockfile.ErrLockDenied) {
			fmt.Fprintln(env.Err, "fatal:", err)
			fmt.Fprintln(env.Err, "")
			fmt.Fprintln(env.Err, "Another grit process seems to be running in this repository.")
			fmt.Fprintln(env.Err, "Please make sure all processes are terminated then try again.")
			fmt.Fprintln(env.Err, "If it still fails, a grit process may have crashed in this")
			fmt.Fprintln(env.Err, "repository earlier: remove the file manually to continue.")
			return &ExitError{Code: 128}
		}
		return env.Fatal(128, "%s", err)
	}

	var paths []string
	for _, arg := range args {
		expanded, err := repo.Workspace.ListFiles(arg)
		if err != nil {
			repo.Index.ReleaseLock()
			return env.Fatal(128, "%s", err)
		}
		paths = append(paths, expanded...)
	}

	for _, path := range paths {
		if err := addToIndex(repo, path); err != nil {
			repo.Index.ReleaseLock()

			var denied *workspace.ErrNoPermission
			if errors.As(err, &denied) {
				fmt.Fprintln(env.Err, "error:", err)
				return env.Fatal(128, "adding files failed")
			}
			return env.Fatal(128, "%s", err)
		}
	}

	if err := repo.Index.WriteUpdates(); err != nil {
		return env.Fatal(128, "%s", err)
	}
	return nil
}

func addToIndex(repo *repository.Repository, path string) error {
	data, err := repo.Workspace.ReadFile(path)
	if err != nil {
		return err
	}
	stat, err := repo.Workspace.StatFile(path)
	if err != nil {
		return err
	}

	blob := database.NewBlob(data)
	if err := repo.Database.Store(blob); err != nil {
		return err
	}

	repo.Index.Add(path, database.OID(blob), stat)
	return nil
}
