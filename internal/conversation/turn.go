package conversation

import "github.com/abhisek/dsatutor/internal/tutor"

// Confidence is the service's self-reported confidence for a turn.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Turn is one entry in the conversation transcript. It is a sealed
// sum type: the only variants are TutorTurn and StudentTurn. Turns
// are never mutated after creation; the transcript is append-only and
// its order is the sole rendering order.
type Turn interface {
	isTurn()
}

// TutorTurn is a server-driven transcript entry. Action keeps the raw
// response tag for the transcript log; rendering goes through Text.
type TutorTurn struct {
	Text       string
	Action     string
	Rationale  string
	Confidence Confidence
	Options    []string
	Question   *tutor.Question
	Graded     *tutor.Graded
}

func (TutorTurn) isTurn() {}

// StudentTurn is a user-driven transcript entry.
type StudentTurn struct {
	Text string
}

func (StudentTurn) isTurn() {}
