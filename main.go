package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"audioprofile/cmd"
	applog "audioprofile/internal/log"
	"audioprofile/pkg/build"
)

// main initializes build information, then runs the command line until it
// finishes or an interrupt cancels it. Analyses interrupted this way are
// dropped without output.
func main() {
	if err := build.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		stop()
		applog.Fatalf("%v", err)
	}
}
