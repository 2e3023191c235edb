package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var (
	version = "dev"
)

// Entry point for the application
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(exitCode(NewRootCmd().ExecuteContext(ctx)))
}

// exitCode maps a command error to the process status and reports it.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNothingMerged):
		return 1
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Operation cancelled by user.")
		return 130
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}
