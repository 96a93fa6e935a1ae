package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/liftr/internal/session"
)

// activeKey is the single slot holding the in-progress session.
const activeKey = "active"

// LoadSession returns the saved in-progress snapshot, or session.ErrNoSnapshot.
func (s *Store) LoadSession() ([]byte, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM session_state WHERE key = ?`, activeKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return []byte(data), nil
}

func (s *Store) SaveSession(data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO session_state (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		activeKey, string(data), now,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) ClearSession() error {
	if _, err := s.db.Exec(`DELETE FROM session_state WHERE key = ?`, activeKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// HasSession reports whether an in-progress snapshot is saved.
func (s *Store) HasSession() (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM session_state WHERE key = ?`, activeKey).Scan(&n); err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n > 0, nil
}
