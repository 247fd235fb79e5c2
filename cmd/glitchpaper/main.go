package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/glitchpaper/internal/cli"
	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(exitCode(run(ctx)))
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}

// exitCode maps a command error to the process status: 0 for success or
// an interrupt, 2 for usage and configuration errors, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case gperrors.IsUsage(err):
		fmt.Fprintln(os.Stderr, "error:", gperrors.UserMessage(err))
		fmt.Fprintln(os.Stderr, "Run 'glitchpaper --help' for usage.")
		return 2
	default:
		fmt.Fprintln(os.Stderr, "error:", gperrors.UserMessage(err))
		return 1
	}
}
