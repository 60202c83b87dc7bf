package chatlog

import (
	"context"
	"time"
)

// TurnRecord is one persisted transcript entry.
type TurnRecord struct {
	SessionID  string
	Seq        int
	Role       string // "tutor" or "student"
	Text       string
	Action     string
	Confidence string
	Rationale  string
	Graded     bool
	Correct    bool
	Expected   string
	Skill      string
	Timestamp  time.Time
}

// SessionRecord summarizes one recorded session.
type SessionRecord struct {
	SessionID string
	StartedAt time.Time
	TurnCount int
}

// TranscriptRepo persists conversation transcripts. Writes are best
// effort: callers never fail a user-facing operation on a log error.
type TranscriptRepo interface {
	// BeginSession records the start of a session.
	BeginSession(ctx context.Context, sessionID string) error

	// AppendTurn records one transcript entry.
	AppendTurn(ctx context.Context, rec TurnRecord) error

	// RecentSessions returns up to limit sessions, newest first.
	RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error)

	// SessionTurns returns the turns of a session in append order.
	SessionTurns(ctx context.Context, sessionID string) ([]TurnRecord, error)

	// Clear deletes all recorded sessions and turns.
	Clear(ctx context.Context) error
}
