package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/mmynk/groupcard/internal/storage"
	"github.com/mmynk/groupcard/internal/storage/storagetest"
)

func TestSQLiteStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		dbPath := filepath.Join(t.TempDir(), "test.db")
		store, err := New(dbPath)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestNewCreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "groupcard.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer store.Close()

	// Migrations are idempotent.
	if err := runMigrations(store.db); err != nil {
		t.Errorf("second migration run failed: %v", err)
	}
}
