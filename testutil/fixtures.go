package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/liquidkit/database"
	"github.com/kbukum/liquidkit/journal"
	"github.com/kbukum/liquidkit/picklist"
	"github.com/kbukum/liquidkit/resilience"
	"github.com/kbukum/liquidkit/storage"
	"github.com/kbukum/liquidkit/storage/local"
)

// MemoryJournal returns a migrated journal on an in-memory database that is
// closed when the test ends.
func MemoryJournal(t testing.TB) *journal.Journal {
	t.Helper()
	c := journal.NewComponent(database.Config{Path: database.Memory}, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("failed to start journal: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(context.Background()) })
	return c.Journal()
}

// PickListStore writes files, keyed by name, to a temporary directory and
// returns a store reading from it.
func PickListStore(t testing.TB, files map[string]string) *picklist.Store {
	t.Helper()
	s, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	for name, content := range files {
		if err := storage.WriteBytes(context.Background(), s, name, []byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return picklist.NewStore(s, resilience.RetryConfig{}, nil)
}
