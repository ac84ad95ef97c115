package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/arthur-debert/drifters/cmd/drifters"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := drifters.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		drifters.WriteError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
