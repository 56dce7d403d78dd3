package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grit-vcs/grit/pkg/config"
)

type configOptions struct {
	unset bool
}

// NewConfigCmd creates the `config` command.
func NewConfigCmd(env *Env) *cobra.Command {
	opts := &configOptions{}

	cmd := &cobra.Command{
		Use:   "config <name> [value]",
		Short: "Get and set repository options",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(env, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.unset, "unset", false, "remove a variable")
	return cmd
}

func runConfig(env *Env, opts *configOptions, args []string) error {
	cfg := env.Repo().Config

	switch {
	case opts.unset:
		return unsetVariable(env, cfg, args[0])
	case len(args) == 2:
		return setVariable(env, cfg, args[0], args[1])
	default:
		return getVariable(env, cfg, args[0])
	}
}

func getVariable(env *Env, cfg *config.Config, name string) error {
	if err := cfg.Open(); err != nil {
		return env.Fatal(128, "%s", err)
	}

	value, ok, err := cfg.Get(name)
	if err != nil {
		return env.Fatal(2, "%s", err)
	}
	if !ok {
		return &ExitError{Code: 1}
	}

	fmt.Fprintln(env.Out, value)
	return nil
}

func setVariable(env *Env, cfg *config.Config, name, value string) error {
	if err := cfg.OpenForUpdate(); err != nil {
		return env.Fatal(128, "%s", err)
	}

	if err := cfg.Set(name, value); err != nil {
		cfg.Rollback()
		return env.Fatal(2, "%s", err)
	}

	if err := cfg.Save(); err != nil {
		return env.Fatal(128, "%s", err)
	}
	return nil
}

func unsetVariable(env *Env, cfg *config.Config, name string) error {
	if err := cfg.OpenForUpdate(); err != nil {
		return env.Fatal(128, "%s", err)
	}

	if err := cfg.Unset(name); err != nil {
		cfg.Rollback()
		return env.Fatal(2, "%s", err)
	}

	if err := cfg.Save(); err != nil {
		return env.Fatal(128, "%s", err)
	}
	return nil
}
