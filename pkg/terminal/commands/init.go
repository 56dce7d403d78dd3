package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const defaultBranch = "main"

// NewInitCmd creates the `init` command.
func NewInitCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Create an empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(env, args)
		},
	}
}

func runInit(env *Env, args []string) error {
	root := env.Dir
	if len(args) > 0 {
		if filepath.IsAbs(args[0]) {
			root = args[0]
		} else {
			root = filepath.Join(env.Dir, args[0])
		}
	}

	gitPath := filepath.Join(root, ".git")
	for _, dir := range []string{"objects", filepath.Join("refs", "heads")} {
		if err := os.MkdirAll(filepath.Join(gitPath, dir), 0o755); err != nil {
			return env.Fatal(1, "%s", err)
		}
	}

	headPath := filepath.Join(gitPath, "HEAD")
	if _, err := os.Stat(headPath); errors.Is(err, os.ErrNotExist) {
		head := "ref: refs/heads/" + defaultBranch + "\n"
		if err := os.WriteFile(headPath, []byte(head), 0o644); err != nil {
			return env.Fatal(1, "%s", err)
		}
	}

	env.Logger.Debug().Str("path", gitPath).Msg("repository initialized")
	fmt.Fprintf(env.Out, "Initialized empty grit repository in %s\n", gitPath)
	return nil
}
