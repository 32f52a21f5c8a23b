package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lexicon/internal/app/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.RootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "governancectl: %v\n", err)
		stop()
		os.Exit(1)
	}
}
