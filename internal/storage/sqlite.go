// Package storage reads the surrounding app's logged-items table so
// suggestions can surface what the user already eats. The suggestion
// side never writes rows; the schema bootstrap only exists so a
// standalone run starts clean.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mealbyte/foodserve/pkg/suggest"
)

// SQLiteStore implements suggest.HistoryStore over the app's log database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS log_items (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        name TEXT NOT NULL,
        barcode TEXT,
        serving_label TEXT,
        calories REAL,
        protein REAL,
        carbs REAL,
        fats REAL,
        weight_amount REAL,
        weight_unit TEXT,
        item_type TEXT NOT NULL DEFAULT 'Food',
        logged_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_log_items_user_name ON log_items(user_id, name);
    CREATE INDEX IF NOT EXISTS idx_log_items_user_barcode ON log_items(user_id, barcode);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const itemColumns = `id, name, COALESCE(barcode, ''), COALESCE(serving_label, ''),
    calories, protein, carbs, fats, weight_amount, COALESCE(weight_unit, ''), item_type, logged_at`

// RecentByName returns the user's logged items whose name contains
// substr, newest first. SQLite's LIKE is already case-insensitive for
// ASCII, which is all the prefilter needs.
func (s *SQLiteStore) RecentByName(ctx context.Context, userID, substr string, limit int) ([]suggest.HistoryItem, error) {
	query := `
        SELECT ` + itemColumns + `
        FROM log_items
        WHERE user_id = ? AND name LIKE ?
        ORDER BY logged_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, query, userID, "%"+substr+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query log items: %w", err)
	}
	defer rows.Close()

	var items []suggest.HistoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ByBarcode returns the most recent item the user logged with the given
// code, or nil when they never logged it.
func (s *SQLiteStore) ByBarcode(ctx context.Context, userID, barcode string) (*suggest.HistoryItem, error) {
	query := `
        SELECT ` + itemColumns + `
        FROM log_items
        WHERE user_id = ? AND barcode = ?
        ORDER BY logged_at DESC
        LIMIT 1
    `
	row := s.db.QueryRowContext(ctx, query, userID, barcode)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (suggest.HistoryItem, error) {
	var (
		item        suggest.HistoryItem
		calories    sql.NullFloat64
		protein     sql.NullFloat64
		carbs       sql.NullFloat64
		fats        sql.NullFloat64
		weight      sql.NullFloat64
		itemType    string
		loggedAtStr string
	)
	err := row.Scan(&item.ID, &item.Name, &item.Barcode, &item.ServingLabel,
		&calories, &protein, &carbs, &fats, &weight, &item.WeightUnit, &itemType, &loggedAtStr)
	if err != nil {
		return item, err
	}

	item.Calories = nullableFloat(calories)
	item.Protein = nullableFloat(protein)
	item.Carbs = nullableFloat(carbs)
	item.Fats = nullableFloat(fats)
	item.WeightAmount = nullableFloat(weight)
	item.Type = suggest.ItemType(itemType)
	item.LoggedAt = parseLoggedAt(loggedAtStr)
	return item, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// parseLoggedAt tolerates the timestamp formats the driver hands back.
func parseLoggedAt(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
