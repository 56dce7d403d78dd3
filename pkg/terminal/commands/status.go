package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/grit-vcs/grit/pkg/repository"
)

type statusOptions struct {
	porcelain bool
}

var longStatusLabels = map[repository.ChangeType]string{
	repository.Added:    "new file:",
	repository.Deleted:  "deleted:",
	repository.Modified: "modified:",
}

var porcelainLetters = map[repository.ChangeType]string{
	repository.Added:    "A",
	repository.Deleted:  "D",
	repository.Modified: "M",
}

// NewStatusCmd creates the `status` command.
func NewStatusCmd(env *Env) *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(env, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.porcelain, "porcelain", false, "machine-readable output")
	return cmd
}

func runStatus(env *Env, opts *statusOptions) error {
	repo := env.Repo()

	// Scanning refreshes stale stat caches, so take the index lock and
	// persist whatever the scan touched.
	if err := repo.Index.LoadForUpdate(); err != nil {
		return env.Fatal(128, "%s", err)
	}

	status, err := repo.Status()
	if err != nil {
		repo.Index.ReleaseLock()
		return env.Fatal(128, "%s", err)
	}

	if err := repo.Index.WriteUpdates(); err != nil {
		return env.Fatal(128, "%s", err)
	}

	if opts.porcelain {
		printPorcelain(env, status)
	} else {
		printLongStatus(env, status)
	}
	return nil
}

func printPorcelain(env *Env, status *repository.Status) {
	for _, path := range status.Changed() {
		left, right := " ", " "
		if change, ok := status.IndexChanges[path]; ok {
			left = porcelainLetters[change]
		}
		if change, ok := status.WorkspaceChanges[path]; ok {
			right = porcelainLetters[change]
		}
		fmt.Fprintf(env.Out, "%s%s %s\n", left, right, path)
	}

	for _, path := range status.UntrackedFiles() {
		fmt.Fprintf(env.Out, "?? %s\n", path)
	}
}

func printLongStatus(env *Env, status *repository.Status) {
	printChangeSection(env, "Changes to be committed", status.IndexChanges, green)
	printChangeSection(env, "Changes not staged for commit", status.WorkspaceChanges, red)
	printUntrackedSection(env, status)
	printCommitStatus(env, status)
}

func printChangeSection(env *Env, title string, changes map[string]repository.ChangeType, paint func(...any) string) {
	if len(changes) == 0 {
		return
	}

	fmt.Fprintf(env.Out, "%s:\n\n", title)
	for _, path := range sortedChangePaths(changes) {
		line := fmt.Sprintf("%-12s%s", longStatusLabels[changes[path]], path)
		fmt.Fprintf(env.Out, "\t%s\n", paint(line))
	}
	fmt.Fprintln(env.Out, "")
}

func printUntrackedSection(env *Env, status *repository.Status) {
	untracked := status.UntrackedFiles()
	if len(untracked) == 0 {
		return
	}

	fmt.Fprintf(env.Out, "Untracked files:\n\n")
	for _, path := range untracked {
		fmt.Fprintf(env.Out, "\t%s\n", red(path))
	}
	fmt.Fprintln(env.Out, "")
}

func printCommitStatus(env *Env, status *repository.Status) {
	switch {
	case len(status.IndexChanges) > 0:
	case len(status.WorkspaceChanges) > 0:
		fmt.Fprintln(env.Out, "no changes added to commit")
	case len(status.UntrackedFiles()) > 0:
		fmt.Fprintln(env.Out, "nothing added to commit but untracked files present")
	default:
		fmt.Fprintln(env.Out, "nothing to commit, working tree clean")
	}
}

func sortedChangePaths(changes map[string]repository.ChangeType) []string {
	paths := make([]string, 0, len(changes))
	for path := range changes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
