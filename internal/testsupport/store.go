package testsupport

import (
	"testing"

	"studyroom/internal/config"
	"studyroom/internal/store"
)

// MustOpenStore opens a store.Repository for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...store.Option) *store.Repository {
	t.Helper()

	repo, err := store.Open(cfg, opts...)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}
