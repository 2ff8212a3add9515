// Package store is the client's persistent state: the cached user
// profile, the fallback session tokens, and the selected persona
// index, backed by a small SQLite database under ~/.docchat.
//
// A single process owns the database at a time; concurrent access
// from multiple invocations is not coordinated.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a sql.DB with typed accessors for the client state.
type Store struct {
	*sql.DB
	path string
}

// User is the cached profile record: the provider identity merged
// with the secondary profile fields (username, phone).
type User struct {
	UID      string
	Email    string
	Username string
	Phone    string
}

// Session holds the provider tokens persisted across invocations.
type Session struct {
	IDToken      string
	RefreshToken string
	Expiry       time.Time
}

// DefaultPath returns the state database path (~/.docchat/state.db).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".docchat", "state.db"), nil
}

// Open creates or opens the state database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging state database: %w", err)
	}

	s := &Store{DB: sqlDB, path: path}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory state database (useful for testing).
func OpenMemory() (*Store, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	s := &Store{DB: sqlDB, path: ":memory:"}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.Exec(schema)
	return err
}

// schema contains the full state schema. The profile and session
// tables hold at most one row each.
const schema = `
CREATE TABLE IF NOT EXISTS profile (
    id INTEGER PRIMARY KEY CHECK(id = 1),
    uid TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    username TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS session (
    id INTEGER PRIMARY KEY CHECK(id = 1),
    id_token TEXT NOT NULL DEFAULT '',
    refresh_token TEXT NOT NULL DEFAULT '',
    expiry DATETIME
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// SaveUser caches the given profile, replacing any previous one.
func (s *Store) SaveUser(u *User) error {
	_, err := s.Exec(`
		INSERT INTO profile (id, uid, email, username, phone, updated_at)
		VALUES (1, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			uid = excluded.uid, email = excluded.email,
			username = excluded.username, phone = excluded.phone,
			updated_at = excluded.updated_at`,
		u.UID, u.Email, u.Username, u.Phone)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// User returns the cached profile, or nil when none is stored.
func (s *Store) User() (*User, error) {
	var u User
	err := s.QueryRow(`SELECT uid, email, username, phone FROM profile WHERE id = 1`).
		Scan(&u.UID, &u.Email, &u.Username, &u.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading user: %w", err)
	}
	return &u, nil
}

// ClearUser removes the cached profile.
func (s *Store) ClearUser() error {
	if _, err := s.Exec(`DELETE FROM profile`); err != nil {
		return fmt.Errorf("clearing user: %w", err)
	}
	return nil
}

// SaveSession persists the provider tokens.
func (s *Store) SaveSession(sess *Session) error {
	_, err := s.Exec(`
		INSERT INTO session (id, id_token, refresh_token, expiry)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			id_token = excluded.id_token,
			refresh_token = excluded.refresh_token,
			expiry = excluded.expiry`,
		sess.IDToken, sess.RefreshToken, sess.Expiry.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Session returns the persisted tokens, or nil when none are stored.
func (s *Store) Session() (*Session, error) {
	var (
		sess   Session
		expiry sql.NullString
	)
	err := s.QueryRow(`SELECT id_token, refresh_token, expiry FROM session WHERE id = 1`).
		Scan(&sess.IDToken, &sess.RefreshToken, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if expiry.Valid {
		if t, err := time.Parse(time.RFC3339, expiry.String); err == nil {
			sess.Expiry = t
		}
	}
	return &sess, nil
}

// ClearSession removes the persisted tokens.
func (s *Store) ClearSession() error {
	if _, err := s.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// SetToken stores the fallback bearer token used when no provider
// session can mint a fresh one.
func (s *Store) SetToken(token string) error {
	return s.setSetting("token", token)
}

// Token returns the fallback bearer token, or empty when unset.
func (s *Store) Token() (string, error) {
	return s.setting("token")
}

// ClearToken removes the fallback bearer token.
func (s *Store) ClearToken() error {
	if _, err := s.Exec(`DELETE FROM settings WHERE key = 'token'`); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}

// SetChatFace records the persona selection. The stored value is the
// declared id minus one; the off-by-one convention is load-bearing for
// compatibility with existing stored state.
func (s *Store) SetChatFace(declaredID int) error {
	return s.setSetting("chat_face_id", strconv.Itoa(declaredID-1))
}

// ChatFaceIndex returns the stored persona selection index, defaulting
// to zero when unset or unparsable.
func (s *Store) ChatFaceIndex() (int, error) {
	v, err := s.setting("chat_face_id")
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, nil
	}
	return i, nil
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) setting(key string) (string, error) {
	var v string
	err := s.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %s: %w", key, err)
	}
	return v, nil
}
