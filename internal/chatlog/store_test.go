package chatlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndReadTurns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginSession(ctx, "ui-1"))
	require.NoError(t, s.AppendTurn(ctx, TurnRecord{
		SessionID: "ui-1", Seq: 1, Role: "tutor",
		Text:       "Before we jump into DSA, want to take a quick diagnostic so I can tailor your path?",
		Confidence: "high", Rationale: "fresh session",
	}))
	require.NoError(t, s.AppendTurn(ctx, TurnRecord{
		SessionID: "ui-1", Seq: 2, Role: "student", Text: "Yes",
	}))
	require.NoError(t, s.AppendTurn(ctx, TurnRecord{
		SessionID: "ui-1", Seq: 3, Role: "tutor",
		Text:   "Here's what I can tell you about that.",
		Graded: true, Correct: false, Expected: "O(n log n)", Skill: "sorting",
	}))

	turns, err := s.SessionTurns(ctx, "ui-1")
	require.NoError(t, err)
	require.Len(t, turns, 3)

	assert.Equal(t, "tutor", turns[0].Role)
	assert.Equal(t, "high", turns[0].Confidence)
	assert.False(t, turns[0].Graded)

	assert.Equal(t, "student", turns[1].Role)
	assert.Equal(t, "Yes", turns[1].Text)

	require.True(t, turns[2].Graded)
	assert.False(t, turns[2].Correct)
	assert.Equal(t, "O(n log n)", turns[2].Expected)
	assert.Equal(t, "sorting", turns[2].Skill)
	assert.False(t, turns[2].Timestamp.IsZero())
}

func TestSessionTurnsUnknownSession(t *testing.T) {
	s := openTestStore(t)

	turns, err := s.SessionTurns(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRecentSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginSession(ctx, "ui-a"))
	require.NoError(t, s.BeginSession(ctx, "ui-b"))
	require.NoError(t, s.AppendTurn(ctx, TurnRecord{SessionID: "ui-a", Seq: 1, Role: "tutor", Text: "hi"}))
	require.NoError(t, s.AppendTurn(ctx, TurnRecord{SessionID: "ui-a", Seq: 2, Role: "student", Text: "hello"}))

	sessions, err := s.RecentSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	counts := map[string]int{}
	for _, sess := range sessions {
		counts[sess.SessionID] = sess.TurnCount
		assert.False(t, sess.StartedAt.IsZero())
	}
	assert.Equal(t, map[string]int{"ui-a": 2, "ui-b": 0}, counts)
}

func TestBeginSessionIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginSession(ctx, "ui-1"))
	require.NoError(t, s.BeginSession(ctx, "ui-1"))

	sessions, err := s.RecentSessions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginSession(ctx, "ui-1"))
	require.NoError(t, s.AppendTurn(ctx, TurnRecord{SessionID: "ui-1", Seq: 1, Role: "tutor", Text: "hi"}))

	require.NoError(t, s.Clear(ctx))

	sessions, err := s.RecentSessions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	turns, err := s.SessionTurns(ctx, "ui-1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestDefaultDBPathEnvOverride(t *testing.T) {
	p := filepath.Join(t.TempDir(), "custom", "my.db")
	t.Setenv("DSATUTOR_DB", p)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)
}
