package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRmCmd creates the `rm` command.
func NewRmCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>...",
		Short: "Remove files from the working tree and the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRm(env, args)
		},
	}
}

func runRm(env *Env, args []string) error {
	repo := env.Repo()

	if err := repo.Index.LoadForUpdate(); err != nil {
		return env.Fatal(128, "%s", err)
	}

	for _, path := range args {
		if !repo.Index.TrackedFile(path) {
			repo.Index.ReleaseLock()
			return env.Fatal(128, "pathspec '%s' did not match any files", path)
		}
	}

	for _, path := range args {
		repo.Index.Remove(path)
		if err := repo.Workspace.Remove(path); err != nil {
			repo.Index.ReleaseLock()
			return env.Fatal(128, "%s", err)
		}
		fmt.Fprintf(env.Out, "rm '%s'\n", path)
	}

	if err := repo.Index.WriteUpdates(); err != nil {
		return env.Fatal(128, "%s", err)
	}
	return nil
}
