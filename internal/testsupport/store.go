package testsupport

import (
	"testing"

	"statspub/internal/config"
	"statspub/internal/msgq"
	"statspub/internal/status"
)

// MustOpenStore opens a status.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *status.Store {
	t.Helper()

	store, err := status.Open(cfg)
	if err != nil {
		t.Fatalf("status.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenQueue opens a msgq.Store for tests and registers cleanup.
func MustOpenQueue(t testing.TB, cfg *config.Config) *msgq.Store {
	t.Helper()

	queue, err := msgq.Open(cfg)
	if err != nil {
		t.Fatalf("msgq.Open: %v", err)
	}
	t.Cleanup(func() {
		queue.Close()
	})
	return queue
}
