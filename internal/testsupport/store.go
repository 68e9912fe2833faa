package testsupport

import (
	"testing"

	"arrimeta/internal/catalog"
	"arrimeta/internal/config"
)

// MustOpenCatalog opens the configured clip catalog for tests and registers
// cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
