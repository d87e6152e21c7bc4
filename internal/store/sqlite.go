package store

import (
	"database/sql"
	"fmt"
	"sync"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists each key as one row of kv_entries. The table is
// created by db.ApplyMigrations.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const upsertEntry = `
INSERT INTO kv_entries(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET
  value=excluded.value,
  updated_at=excluded.updated_at,
  revision=kv_entries.revision + 1
`

func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLiteStore) Set(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(upsertEntry, key, string(value)); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Update(key string, fn UpdateFunc) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update %q: %w", key, err)
	}
	var (
		current []byte
		ok      bool
		value   string
	)
	err = tx.QueryRow(`SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		_ = tx.Rollback()
		return fmt.Errorf("read %q for update: %w", key, err)
	default:
		current, ok = []byte(value), true
	}

	next, write, err := fn(current, ok)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if !write {
		return tx.Rollback()
	}
	if _, err := tx.Exec(upsertEntry, key, string(next)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Stat(key string) (EntryInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var info EntryInfo
	err := s.db.QueryRow(`SELECT revision, updated_at, length(value) FROM kv_entries WHERE key = ?`, key).
		Scan(&info.Revision, &info.UpdatedAt, &info.SizeBytes)
	if err == sql.ErrNoRows {
		return EntryInfo{}, false, nil
	}
	if err != nil {
		return EntryInfo{}, false, fmt.Errorf("stat %q: %w", key, err)
	}
	return info, true, nil
}
