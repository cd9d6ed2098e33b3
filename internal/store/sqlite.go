package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"medscribe/internal/domain"
)

// StylePreferenceKey is the fixed preference identifier under which a
// provider's style profile is stored.
const StylePreferenceKey = "scribe.note_style"

// SQLite persists session artifacts and style profiles as upserts by
// key. No delete or range queries are exposed.
type SQLite struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the database at path. The
// ":memory:" path yields an ephemeral store for tests.
func Open(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id    TEXT PRIMARY KEY,
			payload       TEXT NOT NULL,
			updated_at_ms INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS style_profiles (
			owner_id       TEXT NOT NULL,
			preference_key TEXT NOT NULL,
			payload        TEXT NOT NULL,
			updated_at_ms  INTEGER NOT NULL,
			PRIMARY KEY (owner_id, preference_key)
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// UpsertSession stores the full session artifact keyed by session id.
func (s *SQLite) UpsertSession(ctx context.Context, session *domain.ScribeSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, payload, updated_at_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at_ms = excluded.updated_at_ms
	`, session.SessionID, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", session.SessionID, err)
	}
	return nil
}

// UpsertStyleProfile stores the profile keyed by owner id and the fixed
// preference key.
func (s *SQLite) UpsertStyleProfile(ctx context.Context, profile *domain.StyleProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode style profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO style_profiles (owner_id, preference_key, payload, updated_at_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id, preference_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at_ms = excluded.updated_at_ms
	`, profile.OwnerID, StylePreferenceKey, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert style profile %s: %w", profile.OwnerID, err)
	}
	return nil
}

// StyleProfile returns the stored profile for ownerID, or nil when the
// provider has no recorded corrections yet.
func (s *SQLite) StyleProfile(ctx context.Context, ownerID string) (*domain.StyleProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payload FROM style_profiles
		WHERE owner_id = ? AND preference_key = ?
	`, ownerID, StylePreferenceKey)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan style profile: %w", err)
	}

	var profile domain.StyleProfile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return nil, fmt.Errorf("decode style profile: %w", err)
	}
	return &profile, nil
}

// Session returns the stored session artifact, or nil when absent.
// Used by hosts to reload a finished encounter; the pipeline itself
// only writes.
func (s *SQLite) Session(ctx context.Context, sessionID string) (*domain.ScribeSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payload FROM sessions WHERE session_id = ?
	`, sessionID)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	var session domain.ScribeSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
