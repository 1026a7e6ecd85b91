package testsupport

import (
	"testing"

	"orbitgen/internal/catalog"
	"orbitgen/internal/config"
)

// MustOpenCatalog opens the fixture catalog for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
