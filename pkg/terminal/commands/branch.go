package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grit-vcs/grit/pkg/refs"
	"github.com/grit-vcs/grit/pkg/revision"
)

// NewBranchCmd creates the `branch` command.
func NewBranchCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "branch [name] [start-point]",
		Short: "List or create branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listBranches(env)
			}
			return createBranch(env, args)
		},
	}
}

func listBranches(env *Env) error {
	repo := env.Repo()

	current, err := repo.Refs.CurrentRef(refs.HEAD)
	if err != nil {
		return env.Fatal(128, "%s", err)
	}

	names, err := repo.Refs.ListBranches()
	if err != nil {
		return env.Fatal(128, "%s", err)
	}

	for _, name := range names {
		if current.ShortName() == name {
			fmt.Fprintf(env.Out, "* %s\n", green(name))
		} else {
			fmt.Fprintf(env.Out, "  %s\n", name)
		}
	}
	return nil
}

func createBranch(env *Env, args []string) error {
	repo := env.Repo()
	name := args[0]

	var startOID string
	var err error

	if len(args) > 1 {
		rev := revision.New(repo.Refs, repo.Database, args[1])
		startOID, err = rev.Resolve(revision.CommitType)
		if err != nil {
			printHintedErrors(env, rev.Errors)
			return env.Fatal(128, "%s", err)
		}
	} else {
		startOID, err = repo.Refs.ReadHead()
		if err != nil {
			return env.Fatal(128, "%s", err)
		}
		if startOID == "" {
			current, _ := repo.Refs.CurrentRef(refs.HEAD)
			return env.Fatal(128, "Not a valid object name: '%s'.", current.ShortName())
		}
	}

	if err := repo.Refs.CreateBranch(name, startOID); err != nil {
		return env.Fatal(128, "%s", err)
	}
	return nil
}

func printHintedErrors(env *Env, errs []revision.HintedError) {
	for _, hinted := range errs {
		fmt.Fprintf(env.Err, "error: %s\n", hinted.Message)
		for _, line := range hinted.Hint {
			fmt.Fprintf(env.Err, "hint: %s\n", line)
		}
	}
}
