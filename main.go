// Package main is the entry point for the bookweave CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tmoreland/bookweave/cmd"
	"github.com/tmoreland/bookweave/internal/core/entities"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date, builtBy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// After the first signal, restore default signal handling so a
		// second SIGINT/SIGTERM terminates the process immediately.
		<-ctx.Done()
		stop()
	}()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps the error taxonomy to a process exit code: 2 for a
// ConfigError, 1 for any other error. Command-line usage errors reported by
// Cobra (unknown flag, missing required flag) are not ConfigErrors and exit 1.
func exitCodeFor(err error) int {
	var cfgErr *entities.ConfigError
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}
