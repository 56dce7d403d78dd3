// Package terminal assembles the command-line interface.
package terminal

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/grit-vcs/grit/pkg/terminal/commands"
)

// CLI represents the command-line interface
type CLI struct {
	env     *commands.Env
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Dir       string
	Output    io.Writer
	ErrOutput io.Writer
	Logger    zerolog.Logger
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}

	cli := &CLI{
		env: &commands.Env{
			Dir:    opts.Dir,
			Out:    opts.Output,
			Err:    opts.ErrOutput,
			Logger: opts.Logger,
		},
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteArgs runs the CLI with an explicit argument list.
func (cli *CLI) ExecuteArgs(args []string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grit",
		Short:         "A content tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetOut(cli.env.Out)
	cmd.SetErr(cli.env.Err)

	cmd.AddCommand(commands.NewInitCmd(cli.env))
	cmd.AddCommand(commands.NewAddCmd(cli.env))
	cmd.AddCommand(commands.NewCommitCmd(cli.env))
	cmd.AddCommand(commands.NewStatusCmd(cli.env))
	cmd.AddCommand(commands.NewLogCmd(cli.env))
	cmd.AddCommand(commands.NewBranchCmd(cli.env))
	cmd.AddCommand(commands.NewRmCmd(cli.env))
	cmd.AddCommand(commands.NewDiffCmd(cli.env))
	cmd.AddCommand(commands.NewConfigCmd(cli.env))

	return cmd
}
