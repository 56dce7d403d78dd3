package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/grit-vcs/grit/pkg/database"
	"github.com/grit-vcs/grit/pkg/refs"
	"github.com/grit-vcs/grit/pkg/repository"
)

type commitOptions struct {
	message string
}

// NewCommitCmd creates the `commit` command.
func NewCommitCmd(env *Env) *cobra.Command {
	opts := &commitOptions{}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record changes to the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(env, opts, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "commit message")
	return cmd
}

func runCommit(env *Env, opts *commitOptions, stdin io.Reader) error {
	repo := env.Repo()

	message, err := commitMessage(opts, stdin)
	if err != nil {
		return env.Fatal(128, "%s", err)
	}
	if message == "" {
		fmt.Fprintln(env.Err, "Aborting commit due to empty commit message.")
		return &ExitError{Code: 1}
	}

	author, err := resolveAuthor(env, repo)
	if err != nil {
		return err
	}

	if err := repo.Index.Load(); err != nil {
		return env.Fatal(128, "%s", err)
	}

	tree, err := writeTree(repo)
	if err != nil {
		return env.Fatal(128, "%s", err)
	}

	parent, err := repo.Refs.ReadHead()
	if err != nil {
		return env.Fatal(128, "%s", err)
	}

	commit := database.NewCommit(parent, tree.OID(), author, message)
	if err := repo.Database.Store(commit); err != nil {
		return env.Fatal(128, "%s", err)
	}

	oid := database.OID(commit)
	if err := repo.Refs.UpdateHead(oid); err != nil {
		return env.Fatal(128, "%s", err)
	}

	env.Logger.Debug().Str("oid", oid).Msg("commit written")
	fmt.Fprintf(env.Out, "[%s%s%s] %s\n",
		commitBranchName(repo), rootCommitNote(parent), database.ShortOID(oid), commit.TitleLine())
	return nil
}

func commitMessage(opts *commitOptions, stdin io.Reader) (string, error) {
	message := opts.message
	if message == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		message = string(data)
	}
	return strings.TrimSpace(message), nil
}

func writeTree(repo *repository.Repository) (*database.Tree, error) {
	var entries []database.Entry
	for _, entry := range repo.Index.Entries() {
		entries = append(entries, entry.DatabaseEntry())
	}

	tree := database.BuildTree(entries)
	err := tree.Traverse(func(t *database.Tree) error {
		return repo.Database.Store(t)
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

func commitBranchName(repo *repository.Repository) string {
	ref, err := repo.Refs.CurrentRef(refs.HEAD)
	if err != nil || ref.IsHead() {
		return "detached HEAD "
	}
	return ref.ShortName() + " "
}

func rootCommitNote(parent string) string {
	if parent == "" {
		return "(root-commit) "
	}
	return ""
}

// resolveAuthor builds the commit author from the environment, falling
// back to the user section of the repository config.
func resolveAuthor(env *Env, repo *repository.Repository) (database.Author, error) {
	v := viper.New()
	v.SetEnvPrefix("git")
	_ = v.BindEnv("author_name")
	_ = v.BindEnv("author_email")

	name := v.GetString("author_name")
	email := v.GetString("author_email")

	if name == "" || email == "" {
		if err := repo.Config.Open(); err != nil {
			return database.Author{}, env.Fatal(128, "%s", err)
		}
		if name == "" {
			name, _, _ = repo.Config.Get("user.name")
		}
		if email == "" {
			email, _, _ = repo.Config.Get("user.email")
		}
	}

	if name == "" || email == "" {
		fmt.Fprintln(env.Err, "Please tell me who you are.")
		fmt.Fprintln(env.Err, "")
		fmt.Fprintln(env.Err, "Run")
		fmt.Fprintln(env.Err, "")
		fmt.Fprintln(env.Err, "  grit config user.name \"Your Name\"")
		fmt.Fprintln(env.Err, "  grit config user.email \"you@example.com\"")
		fmt.Fprintln(env.Err, "")
		return database.Author{}, env.Fatal(128, "empty ident name or email not allowed")
	}

	return database.NewAuthor(name, email, time.Now()), nil
}
