package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"statspub/internal/config"
	"statspub/internal/daemon"
	"statspub/internal/logging"
	"statspub/internal/msgq"
	"statspub/internal/publisher"
	"statspub/internal/status"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := status.Open(cfg)
	if err != nil {
		logger.Error("open status store", logging.Error(err))
		return
	}

	queue, err := msgq.Open(cfg)
	if err != nil {
		logger.Error("open message channel", logging.Error(err))
		store.Close()
		return
	}

	pub := publisher.New(store, queue, logger)

	d, err := daemon.New(cfg, store, queue, pub, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		queue.Close()
		store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("statspubd shutting down")
	d.Stop()
}
