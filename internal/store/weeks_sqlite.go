package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/isq-24/weekly-planner/internal/model"

	_ "modernc.org/sqlite"
)

// UnscopedWeek is the storage key for payloads that carry no week (flat wire format).
const UnscopedWeek = "*"

// WeekStore persists one snapshot per week key. It backs the reference endpoint.
type WeekStore struct {
	db  *sql.DB
	now func() time.Time
}

type WeekRow struct {
	WeekStart string         `json:"weekStart"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Snapshot  model.Snapshot `json:"snapshot"`
}

// OpenWeekStore opens (creating if needed) the sqlite database at path.
// ":memory:" is accepted for tests.
func OpenWeekStore(ctx context.Context, path string) (*WeekStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s := &WeekStore{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *WeekStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS weeks (
			week_start TEXT PRIMARY KEY,
			payload_json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_weeks_updated ON weeks(updated_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *WeekStore) Close() error { return s.db.Close() }

// Put replaces the snapshot stored under weekStart. Writing the same snapshot twice
// leaves a single row with the same content.
func (s *WeekStore) Put(ctx context.Context, weekStart string, snap model.Snapshot) error {
	b, err := json.Marshal(snap.Normalize())
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO weeks (week_start, payload_json, updated_at_unixms)
		VALUES (?, ?, ?)
		ON CONFLICT(week_start) DO UPDATE SET
			payload_json = excluded.payload_json,
			updated_at_unixms = excluded.updated_at_unixms
	`, weekStart, string(b), s.now().UnixMilli())
	return err
}

// Get returns nil when nothing is stored for weekStart.
func (s *WeekStore) Get(ctx context.Context, weekStart string) (*model.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload_json FROM weeks WHERE week_start = ?`, weekStart).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	snap := model.EmptySnapshot()
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, err
	}
	snap = snap.Normalize()
	return &snap, nil
}

// List returns every stored week, most recently updated first.
func (s *WeekStore) List(ctx context.Context) ([]WeekRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT week_start, payload_json, updated_at_unixms
		FROM weeks
		ORDER BY updated_at_unixms DESC, week_start DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []WeekRow{}
	for rows.Next() {
		var (
			row     WeekRow
			payload string
			ms      int64
		)
		if err := rows.Scan(&row.WeekStart, &payload, &ms); err != nil {
			return nil, err
		}
		row.Snapshot = model.EmptySnapshot()
		if err := json.Unmarshal([]byte(payload), &row.Snapshot); err != nil {
			return nil, err
		}
		row.Snapshot = row.Snapshot.Normalize()
		row.UpdatedAt = time.UnixMilli(ms).UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}
