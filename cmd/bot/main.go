package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	creds, err := loadCredentials(ctx, cfg)
	must(err)

	// Startup authentication is fatal on failure: a bot that cannot post
	// has no degraded mode worth running.
	publisher, err := initializePublisher(ctx, cfg, creds)
	must(err)

	scheduler := buildScheduler(cfg, creds, publisher)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Println("Shutting down...")
		cancel()
	}()

	scheduler.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	shutdownSystem(shutdownCtx)
}
