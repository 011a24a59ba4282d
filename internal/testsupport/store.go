package testsupport

import (
	"context"
	"testing"

	"waitline/internal/config"
	"waitline/internal/logging"
	"waitline/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustSeedStore opens a store and applies the config's station and operator
// seed, failing the test on any error.
func MustSeedStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store := MustOpenStore(t, cfg)
	if _, err := store.Bootstrap(context.Background(), cfg); err != nil {
		t.Fatalf("bootstrap store: %v", err)
	}
	return store
}

// NewEngine wraps a seeded store in an Engine with a no-op logger.
func NewEngine(t testing.TB, cfg *config.Config) *queue.Engine {
	t.Helper()

	store := MustSeedStore(t, cfg)
	return queue.NewEngine(store, logging.NewNop())
}
