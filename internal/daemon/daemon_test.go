package daemon_test

import (
	"context"
	"testing"

	"statspub/internal/daemon"
	"statspub/internal/logging"
	"statspub/internal/publisher"
	"statspub/internal/testsupport"
)

func TestStartEnforcesSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	queue := testsupport.MustOpenQueue(t, cfg)
	pub := publisher.New(store, queue, logging.NewNop())

	first, err := daemon.New(cfg, store, queue, pub, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, store, queue, pub, logging.NewNop())
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second daemon start to fail while lock is held")
	}
}

func TestStopReleasesLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	queue := testsupport.MustOpenQueue(t, cfg)
	pub := publisher.New(store, queue, logging.NewNop())

	d, err := daemon.New(cfg, store, queue, pub, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.Stop()

	again, err := daemon.New(cfg, store, queue, pub, logging.NewNop())
	if err != nil {
		t.Fatalf("New again: %v", err)
	}
	if err := again.Start(ctx); err != nil {
		t.Fatalf("Start after Stop: %v", err)
	}
	again.Stop()
}

func TestDaemonRequiresDependencies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemon.New(cfg, nil, nil, nil, logging.NewNop()); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
