package main

import (
	"context"
	"errors"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"

	"github.com/matzehuels/famtools/internal/cli"
	"github.com/matzehuels/famtools/pkg/buildinfo"
)

func main() {
	if err := run(context.Background()); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		os.Exit(1)
	}
}

// run executes the root command. fang renders help, usage and errors, and
// cancels the context on SIGINT or SIGTERM.
func run(ctx context.Context) error {
	root := cli.New(os.Stderr, cli.LogInfo).RootCommand()
	return fang.Execute(ctx, root,
		fang.WithVersion(buildinfo.String()),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
}
