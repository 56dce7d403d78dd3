package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/grit-vcs/grit/pkg/terminal"
	"github.com/grit-vcs/grit/pkg/terminal/commands"
)

func main() {
	_ = godotenv.Load()

	level := zerolog.Disabled
	if os.Getenv("GRIT_TRACE") != "" {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		Dir:       dir,
		Output:    os.Stdout,
		ErrOutput: os.Stderr,
		Logger:    logger,
	})

	if err := cli.Execute(); err != nil {
		var exit *commands.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
