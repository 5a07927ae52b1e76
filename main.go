package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"equalizer/cmd"
	"equalizer/internal/log"
	"equalizer/pkg/build"
)

// main loads build metadata, then hands control to the CLI. SIGINT and
// SIGTERM cancel the command's context so the player and any network
// publishers shut down cleanly.
func main() {
	if err := build.Initialize(); err != nil {
		if !errors.Is(err, build.ErrMissingFlag) {
			log.Fatalf("%v", err)
		}
		log.Debugf("Development build: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		stop()
		log.Fatalf("%v", err)
	}
}
