package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func record(id, status string, age time.Duration) *RunRecord {
	return &RunRecord{
		ID:           id,
		DocumentName: "doc.yaml",
		RulesName:    "checks.rules",
		Status:       status,
		Passed:       1,
		Report:       `{"run_id":"` + id + `"}`,
		CreatedAt:    time.Now().UTC().Add(-age),
	}
}

// storeTest exercises the Store contract against any implementation.
func storeTest(t *testing.T, store Store) {
	ctx := context.Background()

	if err := store.Save(ctx, record("run-1", "PASS", 3*time.Hour)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := store.Save(ctx, record("run-2", "FAIL", 2*time.Hour)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := store.Save(ctx, record("run-3", "PASS", time.Hour)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	t.Run("get", func(t *testing.T) {
		got, err := store.Get(ctx, "run-2")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got == nil || got.Status != "FAIL" {
			t.Errorf("Get(run-2) = %v, want the FAIL run", got)
		}

		missing, err := store.Get(ctx, "nope")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if missing != nil {
			t.Errorf("Get(nope) = %v, want nil", missing)
		}
	})

	t.Run("query newest first", func(t *testing.T) {
		records, err := store.Query(ctx, nil)
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("len(records) = %d, want 3", len(records))
		}
		if records[0].ID != "run-3" || records[2].ID != "run-1" {
			t.Errorf("order = %s..%s, want run-3..run-1", records[0].ID, records[2].ID)
		}
	})

	t.Run("query by status", func(t *testing.T) {
		records, err := store.Query(ctx, &Query{Status: "FAIL"})
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if len(records) != 1 || records[0].ID != "run-2" {
			t.Errorf("records = %v, want only run-2", records)
		}
	})

	t.Run("query with limit", func(t *testing.T) {
		records, err := store.Query(ctx, &Query{Limit: 2})
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("len(records) = %d, want 2", len(records))
		}
	})

	t.Run("query by time range", func(t *testing.T) {
		since := time.Now().UTC().Add(-150 * time.Minute)
		records, err := store.Query(ctx, &Query{Since: &since})
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("len(records) = %d, want runs newer than 2.5h", len(records))
		}
	})

	t.Run("prune", func(t *testing.T) {
		removed, err := store.Prune(ctx, time.Now().UTC().Add(-90*time.Minute))
		if err != nil {
			t.Fatalf("Prune() failed: %v", err)
		}
		if removed != 2 {
			t.Errorf("removed = %d, want 2", removed)
		}
		records, err := store.Query(ctx, nil)
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if len(records) != 1 || records[0].ID != "run-3" {
			t.Errorf("survivors = %v, want only run-3", records)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeTest(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	defer store.Close()
	storeTest(t, store)
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(SQLiteConfig{}); err == nil {
		t.Error("NewSQLiteStore() succeeded without a path")
	}
}

func TestSQLiteStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	if err := store.Save(ctx, record("persist-1", "PASS", 0)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := NewSQLiteStore(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(ctx, "persist-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got == nil || got.Status != "PASS" {
		t.Errorf("Get() = %v, want the persisted run", got)
	}
}

func TestMemoryStore_CopiesRecords(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := record("run-1", "PASS", 0)
	if err := store.Save(ctx, original); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	original.Status = "MUTATED"

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Status != "PASS" {
		t.Error("stored record shares memory with the caller's")
	}
}

func TestPruner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Save(ctx, record("old", "PASS", 48*time.Hour))
	store.Save(ctx, record("new", "PASS", time.Hour))

	pruner := NewPruner(store, 24*time.Hour, nil)
	removed, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestPruner_ZeroRetentionDisabled(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Save(ctx, record("old", "PASS", 1000*time.Hour))

	pruner := NewPruner(store, 0, nil)
	removed, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 with retention disabled", removed)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	pruner := NewPruner(NewMemoryStore(), time.Hour, nil)
	scheduler := NewScheduler(pruner, "not a cron expr", nil)
	if err := scheduler.Start(context.Background()); err == nil {
		t.Error("Start() succeeded with an invalid schedule")
	}
}

func TestScheduler_EmptyScheduleIdles(t *testing.T) {
	pruner := NewPruner(NewMemoryStore(), time.Hour, nil)
	scheduler := NewScheduler(pruner, "", nil)
	if err := scheduler.Start(context.Background()); err != nil {
		t.Errorf("Start() with empty schedule failed: %v", err)
	}
	scheduler.Stop()
}

func TestScheduler_StartStop(t *testing.T) {
	pruner := NewPruner(NewMemoryStore(), time.Hour, nil)
	scheduler := NewScheduler(pruner, "0 3 * * *", nil)
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := scheduler.Start(context.Background()); err == nil {
		t.Error("second Start() succeeded, want already-running error")
	}
	scheduler.Stop()
	scheduler.Stop() // idempotent
}