package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS session_state (
		key        TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS workouts (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL DEFAULT '',
		started_at     TEXT NOT NULL,
		finished_at    TEXT NOT NULL,
		duration       INTEGER NOT NULL DEFAULT 0,
		total_sets     INTEGER NOT NULL DEFAULT 0,
		completed_sets INTEGER NOT NULL DEFAULT 0,
		total_volume   REAL NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_workouts_finished ON workouts(finished_at);

	CREATE TABLE IF NOT EXISTS workout_sets (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_id     TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
		exercise_index INTEGER NOT NULL,
		exercise_name  TEXT NOT NULL,
		muscle_group   TEXT NOT NULL DEFAULT '',
		set_index      INTEGER NOT NULL,
		weight         REAL NOT NULL DEFAULT 0,
		reps           INTEGER NOT NULL DEFAULT 0,
		rpe            REAL NOT NULL DEFAULT 0,
		notes          TEXT NOT NULL DEFAULT '',
		completed_at   TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sets_workout  ON workout_sets(workout_id);
	CREATE INDEX IF NOT EXISTS idx_sets_exercise ON workout_sets(exercise_name);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('default_rest_time', '90'),
		('auto_start_rest',   'true'),
		('haptics',           'true'),
		('keep_awake',        'true'),
		('sound',             'true'),
		('theme',             'dark');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/liftr/liftr.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "liftr", "liftr.db"), nil
}
