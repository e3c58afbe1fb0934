// Command anfir normalizes expression trees into A-normal form and works
// with their IR graphs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/anfir/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	code := cli.GetExitCode(err)
	var exitErr *cli.ExitError
	// Failures are already reported on stdout by the command.
	if err != nil && !(errors.As(err, &exitErr) && code == cli.ExitFailure) {
		fmt.Fprintf(os.Stderr, "anfir: %v\n", err)
	}
	os.Exit(code)
}
