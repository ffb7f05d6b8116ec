package store

import (
	"database/sql"
	"fmt"
)

// GetConfig returns the stored value for key, or ok=false if unset
// (spec.md §4.7 persisted configuration).
func (s *SQLiteStore) GetConfig(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config failed: %w", err)
	}
	return value, true, nil
}

// SetConfig writes key=value to the config table, replacing any existing
// value.
func (s *SQLiteStore) SetConfig(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO config (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set config failed: %w", err)
	}
	return nil
}
