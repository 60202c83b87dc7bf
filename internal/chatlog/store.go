package chatlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed TranscriptRepo.
type Store struct {
	db *sql.DB
}

var _ TranscriptRepo = (*Store)(nil)

// Open creates a Store connected to the SQLite database at dsn. It
// applies recommended pragmas and creates the schema if missing.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		action TEXT NOT NULL DEFAULT '',
		confidence TEXT NOT NULL DEFAULT '',
		rationale TEXT NOT NULL DEFAULT '',
		correct INTEGER,
		expected TEXT NOT NULL DEFAULT '',
		skill TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, seq);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// BeginSession records the start of a session.
func (s *Store) BeginSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (session_id, started_at) VALUES (?, ?)`,
		sessionID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// AppendTurn records one transcript entry.
func (s *Store) AppendTurn(ctx context.Context, rec TurnRecord) error {
	var correct sql.NullBool
	if rec.Graded {
		correct = sql.NullBool{Bool: rec.Correct, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO turns (session_id, seq, role, text, action, confidence, rationale, correct, expected, skill, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Seq, rec.Role, rec.Text, rec.Action,
		rec.Confidence, rec.Rationale, correct, rec.Expected, rec.Skill,
		time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.session_id, s.started_at, COUNT(t.id)
		FROM sessions s
		LEFT JOIN turns t ON t.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var started int64
		if err := rows.Scan(&rec.SessionID, &started, &rec.TurnCount); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		rec.StartedAt = time.Unix(started, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SessionTurns returns the turns of a session in append order.
func (s *Store) SessionTurns(ctx context.Context, sessionID string) ([]TurnRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, role, text, action, confidence, rationale, correct, expected, skill, created_at
		FROM turns
		WHERE session_id = ?
		ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var rec TurnRecord
		var correct sql.NullBool
		var created int64
		if err := rows.Scan(&rec.SessionID, &rec.Seq, &rec.Role, &rec.Text,
			&rec.Action, &rec.Confidence, &rec.Rationale, &correct,
			&rec.Expected, &rec.Skill, &created); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		rec.Graded = correct.Valid
		rec.Correct = correct.Bool
		rec.Timestamp = time.Unix(created, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Clear deletes all recorded sessions and turns.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM turns`); err != nil {
		return fmt.Errorf("delete turns: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. DSATUTOR_DB environment variable
// 2. $XDG_DATA_HOME/dsatutor/dsatutor.db
// 3. ~/.local/share/dsatutor/dsatutor.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("DSATUTOR_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "dsatutor", "dsatutor.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
