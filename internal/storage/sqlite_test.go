package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mealbyte/foodserve/pkg/suggest"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "log.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, store *SQLiteStore, id, userID, name, barcode string, calories *float64, loggedAt string) {
	t.Helper()
	_, err := store.db.Exec(`
        INSERT INTO log_items (id, user_id, name, barcode, calories, item_type, logged_at)
        VALUES (?, ?, ?, ?, ?, 'Food', ?)`,
		id, userID, name, barcode, calories, loggedAt)
	if err != nil {
		t.Fatalf("seeding %s: %v", name, err)
	}
}

func TestRecentByName(t *testing.T) {
	store := newTestStore(t)
	kcal := 120.0
	seed(t, store, "1", "u1", "Greek Yogurt", "", &kcal, "2026-08-01T08:00:00Z")
	seed(t, store, "2", "u1", "Greek Yogurt with Honey", "", nil, "2026-08-03T08:00:00Z")
	seed(t, store, "3", "u1", "Oatmeal", "", &kcal, "2026-08-02T08:00:00Z")
	// another user's yogurt must never leak in
	seed(t, store, "4", "u2", "Yogurt Parfait", "", &kcal, "2026-08-04T08:00:00Z")

	items, err := store.RecentByName(context.Background(), "u1", "yog", 10)
	if err != nil {
		t.Fatalf("RecentByName: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}
	// newest first
	if items[0].Name != "Greek Yogurt with Honey" || items[1].Name != "Greek Yogurt" {
		t.Errorf("wrong order: %q, %q", items[0].Name, items[1].Name)
	}
	if items[0].Calories != nil {
		t.Errorf("Calories = %v, want nil for an unfilled row", *items[0].Calories)
	}
	if items[1].Calories == nil || *items[1].Calories != 120 {
		t.Errorf("Calories = %v, want 120", items[1].Calories)
	}
	if items[0].LoggedAt.IsZero() {
		t.Error("LoggedAt did not parse")
	}
}

func TestRecentByNameLimit(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		seed(t, store, string(rune('a'+i)), "u1", "Yogurt", "", nil, "2026-08-01T08:00:00Z")
	}
	items, err := store.RecentByName(context.Background(), "u1", "yog", 3)
	if err != nil {
		t.Fatalf("RecentByName: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("got %d items, want the limit of 3", len(items))
	}
}

func TestByBarcode(t *testing.T) {
	store := newTestStore(t)
	oldKcal, newKcal := 90.0, 95.0
	seed(t, store, "1", "u1", "Diet Cola", "049000050103", &oldKcal, "2026-07-01T08:00:00Z")
	seed(t, store, "2", "u1", "Diet Cola", "049000050103", &newKcal, "2026-08-01T08:00:00Z")

	t.Run("most recent wins", func(t *testing.T) {
		item, err := store.ByBarcode(context.Background(), "u1", "049000050103")
		if err != nil {
			t.Fatalf("ByBarcode: %v", err)
		}
		if item == nil {
			t.Fatal("expected an item")
		}
		if item.Calories == nil || *item.Calories != 95 {
			t.Errorf("Calories = %v, want the newer 95", item.Calories)
		}
		if item.Type != suggest.TypeFood {
			t.Errorf("Type = %q", item.Type)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		item, err := store.ByBarcode(context.Background(), "u1", "0000000000000")
		if err != nil {
			t.Fatalf("ByBarcode: %v", err)
		}
		if item != nil {
			t.Errorf("expected nil, got %+v", item)
		}
	})

	t.Run("other user's log is invisible", func(t *testing.T) {
		item, err := store.ByBarcode(context.Background(), "u2", "049000050103")
		if err != nil {
			t.Fatalf("ByBarcode: %v", err)
		}
		if item != nil {
			t.Errorf("expected nil, got %+v", item)
		}
	})
}
