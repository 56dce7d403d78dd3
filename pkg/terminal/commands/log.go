package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grit-vcs/grit/pkg/database"
)

type logOptions struct {
	oneline bool
}

// NewLogCmd creates the `log` command.
func NewLogCmd(env *Env) *cobra.Command {
	opts := &logOptions{}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(env, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.oneline, "oneline", false, "one commit per line")
	return cmd
}

func runLog(env *Env, opts *logOptions) error {
	repo := env.Repo()

	oid, err := repo.Refs.ReadHead()
	if err != nil {
		return env.Fatal(128, "%s", err)
	}

	first := true
	for oid != "" {
		commit, err := repo.Database.LoadCommit(oid)
		if err != nil {
			return env.Fatal(128, "%s", err)
		}

		if opts.oneline {
			fmt.Fprintf(env.Out, "%s %s\n", yellow(database.ShortOID(oid)), commit.TitleLine())
		} else {
			if !first {
				fmt.Fprintln(env.Out, "")
			}
			printCommitMedium(env, oid, commit)
		}

		first = false
		oid = commit.Parent
	}
	return nil
}

func printCommitMedium(env *Env, oid string, commit *database.Commit) {
	fmt.Fprintln(env.Out, yellow("commit "+oid))
	fmt.Fprintf(env.Out, "Author: %s <%s>\n", commit.Author.Name, commit.Author.Email)
	fmt.Fprintf(env.Out, "Date:   %s\n", commit.Author.ReadableTime())
	fmt.Fprintln(env.Out, "")

	for _, line := range strings.Split(commit.Message, "\n") {
		fmt.Fprintf(env.Out, "    %s\n", line)
	}
}
