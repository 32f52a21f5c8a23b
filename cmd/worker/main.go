package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"lexicon/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build governance wiring on the configured store.
// 3) Run lifecycle maintenance and the outbox relay until signalled.
func main() {
	log.Println("lexicon governance worker starting")
	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Printf("lexicon governance worker stopped with error: %v", err)
	}
}
