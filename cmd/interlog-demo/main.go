// Package main runs the demo service through its generated interceptors and
// prints the call log to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ierrors.FormatForCLI(err))
		os.Exit(1)
	}
}
