// Package commands implements the individual CLI subcommands. Each
// constructor returns a cobra command bound to a shared Env.
package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/grit-vcs/grit/pkg/repository"
)

// Env carries the process-level context every command needs.
type Env struct {
	Dir    string
	Out    io.Writer
	Err    io.Writer
	Logger zerolog.Logger
}

// Repo opens the repository rooted at the working directory.
func (e *Env) Repo() *repository.Repository {
	return repository.New(filepath.Join(e.Dir, ".git"))
}

// Fatal prints a git-style fatal message and returns the exit status the
// process should finish with.
func (e *Env) Fatal(code int, format string, args ...any) error {
	fmt.Fprintf(e.Err, "fatal: "+format+"\n", args...)
	return &ExitError{Code: code}
}

// ExitError signals a non-zero exit status after the command has already
// reported its own diagnostics.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
