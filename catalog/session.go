package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// SessionStore persists the bearer token and user snapshot in a small SQLite
// database on disk, read at startup to decide whether the user is logged in.
// A token is trusted until the backend rejects it; there is no expiry
// tracking and no other local state.
type SessionStore struct {
	db *sql.DB
}

// OpenSessionStore opens (or creates) the session database at dbPath.
func OpenSessionStore(dbPath string) (*SessionStore, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS session (key TEXT PRIMARY KEY, value TEXT NOT NULL);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session table: %w", err)
	}

	return &SessionStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SessionStore) Close() error { return s.db.Close() }

// SetSession persists the token and user snapshot, overwriting any prior
// session in one transaction.
func (s *SessionStore) SetSession(token string, user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO session(key,value) VALUES(?,?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`
	if _, err := tx.Exec(upsert, tokenKey, token); err != nil {
		return err
	}
	if _, err := tx.Exec(upsert, userKey, string(raw)); err != nil {
		return err
	}
	return tx.Commit()
}

// Token returns the stored bearer token, or ErrNoSession.
func (s *SessionStore) Token() (string, error) {
	var token string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key=?`, tokenKey).Scan(&token)
	if err == sql.ErrNoRows {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// User returns the stored user snapshot, or ErrNoSession.
func (s *SessionStore) User() (User, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key=?`, userKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return User{}, ErrNoSession
	}
	if err != nil {
		return User{}, err
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	return user, nil
}

// Clear removes both persisted values.
func (s *SessionStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session`)
	return err
}
