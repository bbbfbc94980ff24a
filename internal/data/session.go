package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// SessionSource tells where the session came from
type SessionSource string

const (
	SessionFromEnv  SessionSource = "env"
	SessionFromFile SessionSource = "file"
	SessionNew      SessionSource = "new"
)

// SessionEntry is one cached token in the portable session blob
type SessionEntry struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"` // Unix seconds, 0 = no expiry
}

// SessionStore persists the platform tokens in a local SQLite file.
// It implements the Lark SDK token cache.
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ larkcore.Cache = (*SessionStore)(nil)

// OpenSessionStore opens or creates the session file at dbPath
func OpenSessionStore(dbPath string) (*SessionStore, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tokens (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SessionStore{db: db, now: time.Now}, nil
}

// Get returns the cached value, or "" when missing or expired
func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, `SELECT value, expires_at FROM tokens WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query token: %w", err)
	}
	if expiresAt != 0 && s.now().Unix() >= expiresAt {
		return "", nil
	}
	return value, nil
}

// Set stores value under key for expireTime (0 = no expiry)
func (s *SessionStore) Set(ctx context.Context, key string, value string, expireTime time.Duration) error {
	now := s.now()
	var expiresAt int64
	if expireTime > 0 {
		expiresAt = now.Add(expireTime).Unix()
	}
	return s.put(ctx, key, SessionEntry{Value: value, ExpiresAt: expiresAt}, now)
}

func (s *SessionStore) put(ctx context.Context, key string, entry SessionEntry, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tokens (key, value, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, key, entry.Value, entry.ExpiresAt, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Count returns the number of unexpired tokens
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tokens WHERE expires_at = 0 OR expires_at > ?
	`, s.now().Unix()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return n, nil
}

// Import writes a session blob ({"key": {"value": "...", "expires_at": 0}}) into the store
func (s *SessionStore) Import(ctx context.Context, blob string) error {
	var entries map[string]SessionEntry
	if err := json.Unmarshal([]byte(blob), &entries); err != nil {
		return fmt.Errorf("failed to parse session blob: %w", err)
	}
	now := s.now()
	for key, entry := range entries {
		if err := s.put(ctx, key, entry, now); err != nil {
			return err
		}
	}
	return nil
}

// Export renders the unexpired tokens as a session blob
func (s *SessionStore) Export(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, expires_at FROM tokens WHERE expires_at = 0 OR expires_at > ?
	`, s.now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]SessionEntry)
	for rows.Next() {
		var key string
		var entry SessionEntry
		if err := rows.Scan(&key, &entry.Value, &entry.ExpiresAt); err != nil {
			return "", fmt.Errorf("failed to scan token: %w", err)
		}
		entries[key] = entry
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to list tokens: %w", err)
	}

	b, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return string(b), nil
}

// Close closes the session file
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// BootstrapSession opens the session file at path. A non-empty blob is written
// into the file first; when it cannot be used the file's own contents are kept.
// The returned source is SessionNew when no usable session was found, meaning
// the caller's login will populate it.
func BootstrapSession(ctx context.Context, path, blob string, logger *zap.Logger) (*SessionStore, SessionSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := OpenSessionStore(path)
	if err != nil {
		return nil, "", err
	}

	if blob != "" {
		if err := store.Import(ctx, blob); err != nil {
			logger.Warn("failed to load session from SESSION_JSON", zap.Error(err))
		} else {
			logger.Info("loaded session from SESSION_JSON", zap.String("path", path))
			return store, SessionFromEnv, nil
		}
	}

	n, err := store.Count(ctx)
	if err != nil {
		store.Close()
		return nil, "", err
	}
	if n > 0 {
		logger.Info("loaded saved session", zap.String("path", path), zap.Int("tokens", n))
		return store, SessionFromFile, nil
	}

	logger.Info("no saved session present, logging in", zap.String("path", path))
	return store, SessionNew, nil
}
