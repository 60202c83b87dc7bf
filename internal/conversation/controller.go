package conversation

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/dsatutor/internal/chatlog"
	"github.com/abhisek/dsatutor/internal/tutor"
)

// Service is the tutor service surface the controller drives.
// *tutor.Client satisfies it.
type Service interface {
	Ingest(ctx context.Context, req tutor.IngestRequest) (*tutor.Result, error)
	NextStep(ctx context.Context, sessionID string) (*tutor.Result, error)
	ResetSession(ctx context.Context, sessionID string) (json.RawMessage, error)
}

// Controller owns the conversation state: the append-only transcript,
// the session identifier, and the busy gate. Operations follow a
// begin/run/commit protocol: a Begin* method mutates local state
// synchronously (optimistic student echo, busy flag) and returns an
// Exchange whose Run performs the network calls; the resulting
// Outcome is handed back to Commit on the event loop.
//
// The controller is not safe for concurrent use. Begin and Commit
// must run on one goroutine (the UI event loop); only Exchange.Run is
// expected to run elsewhere.
type Controller struct {
	svc Service
	log chatlog.TranscriptRepo // optional, best effort

	sessionID string
	turns     []Turn
	busy      bool
	started   bool
	gen       uint64
	lastErr   error

	// logSeq orders persisted turns. Unlike the transcript it is never
	// reset: the session id is reused across a reset, so the log
	// sequence must keep climbing or post-reset turns would collide
	// with pre-reset ones.
	logSeq int
}

// NewController creates a Controller with a fresh session identifier.
// The identifier is generated once and used for every request this
// controller issues; log may be nil.
func NewController(svc Service, log chatlog.TranscriptRepo) *Controller {
	return &Controller{
		svc:       svc,
		log:       log,
		sessionID: "ui-" + uuid.NewString(),
	}
}

// SessionID returns the session identifier.
func (c *Controller) SessionID() string { return c.sessionID }

// Turns returns the transcript in append order. The slice must be
// treated as read-only.
func (c *Controller) Turns() []Turn { return c.turns }

// Busy reports whether an operation is in flight.
func (c *Controller) Busy() bool { return c.busy }

// Started reports whether the session start has completed.
func (c *Controller) Started() bool { return c.started }

// LastErr returns the error from the most recent completed operation,
// or nil.
func (c *Controller) LastErr() error { return c.lastErr }

// LatestTutorTurn returns the most recent tutor turn and its
// transcript index, or nil if there is none. Only the latest tutor
// turn is interactively actionable.
func (c *Controller) LatestTutorTurn() (*TutorTurn, int) {
	for i := len(c.turns) - 1; i >= 0; i-- {
		if t, ok := c.turns[i].(TutorTurn); ok {
			return &t, i
		}
	}
	return nil, -1
}

// Exchange is one in-flight operation against the service.
type Exchange struct {
	gen     uint64
	reset   bool
	start   bool
	action  string
	message string
	qid     string
}

// Outcome is the completed result of an Exchange.
type Outcome struct {
	gen   uint64
	reset bool
	start bool
	Turns []TutorTurn
	Err   error
}

// Start begins the initial session exchange. It is idempotent: once a
// start has been issued or has succeeded, further calls are no-ops
// (the rendering layer may invoke it more than once per lifetime).
// No student turn is appended.
func (c *Controller) Start() (Exchange, bool) {
	if c.started || c.busy {
		return Exchange{}, false
	}
	return c.begin(Exchange{start: true, action: tutor.ActionStart}), true
}

// SelectOption begins a quick-reply exchange. The student turn is
// appended immediately so it renders before the call resolves.
func (c *Controller) SelectOption(label string) (Exchange, bool) {
	if c.busy {
		return Exchange{}, false
	}
	c.appendStudent(label)
	return c.begin(Exchange{action: tutor.ActionContinue, message: label}), true
}

// Answer begins the fixed two-call answer exchange: grade the choice,
// then fetch the next scheduled action.
func (c *Controller) Answer(choice, questionID string) (Exchange, bool) {
	if c.busy {
		return Exchange{}, false
	}
	c.appendStudent(choice)
	return c.begin(Exchange{action: tutor.ActionAnswer, message: choice, qid: questionID}), true
}

// SendText begins a free-text exchange. Trimmed-empty messages are
// silently ignored and issue no request.
func (c *Controller) SendText(message string) (Exchange, bool) {
	message = strings.TrimSpace(message)
	if message == "" || c.busy {
		return Exchange{}, false
	}
	c.appendStudent(message)
	return c.begin(Exchange{action: tutor.ActionContentOnly, message: message}), true
}

// Reset begins a reset exchange: clear server-side state, then start
// fresh. The local transcript is only replaced on success, at commit.
// Unlike the other operations Reset is not busy-gated: it supersedes
// any in-flight exchange, whose outcome the generation check will then
// discard.
func (c *Controller) Reset() (Exchange, bool) {
	return c.begin(Exchange{reset: true}), true
}

func (c *Controller) begin(ex Exchange) Exchange {
	c.busy = true
	c.gen++
	ex.gen = c.gen
	return ex
}

// Run executes an exchange against this controller's service and
// session. It reads only immutable controller fields and is safe to
// call off the event loop.
func (c *Controller) Run(ctx context.Context, ex Exchange) Outcome {
	return ex.Run(ctx, c.svc, c.sessionID)
}

// Run performs the exchange's network calls. It touches no controller
// state and may run on any goroutine.
func (ex Exchange) Run(ctx context.Context, svc Service, sessionID string) Outcome {
	out := Outcome{gen: ex.gen, reset: ex.reset, start: ex.start}

	if ex.reset {
		if _, err := svc.ResetSession(ctx, sessionID); err != nil {
			out.Err = err
			return out
		}
		res, err := svc.Ingest(ctx, tutor.IngestRequest{
			SessionID: sessionID,
			Action:    tutor.ActionStart,
		})
		if err != nil {
			out.Err = err
			return out
		}
		out.Turns = []TutorTurn{DeriveTutorTurn(res)}
		return out
	}

	req := tutor.IngestRequest{SessionID: sessionID, Action: ex.action}
	if ex.action == tutor.ActionAnswer {
		req.QuestionID = ex.qid
		req.Answer = ex.message
	} else {
		req.Message = ex.message
	}

	res, err := svc.Ingest(ctx, req)
	if err != nil {
		out.Err = err
		return out
	}
	out.Turns = append(out.Turns, DeriveTutorTurn(res))

	// Answering is a fixed two-call sequence: grade first, then fetch
	// the next scheduled action.
	if ex.action == tutor.ActionAnswer {
		next, err := svc.NextStep(ctx, sessionID)
		if err != nil {
			out.Err = err
			return out
		}
		out.Turns = append(out.Turns, DeriveTutorTurn(next))
	}

	return out
}

// Commit applies a completed outcome. Outcomes whose generation no
// longer matches, such as a response resolving after a reset, are
// discarded without touching the transcript.
func (c *Controller) Commit(o Outcome) {
	if o.gen != c.gen {
		return
	}
	c.busy = false
	c.lastErr = o.Err

	if o.Err == nil {
		if o.reset {
			c.turns = nil
		}
		if o.start || o.reset {
			c.started = true
			c.logSessionStart()
		}
	}

	// Turns received before a mid-sequence failure are kept, as are
	// the optimistic student turns already in the transcript.
	for _, t := range o.Turns {
		c.appendTutor(t)
	}
}

func (c *Controller) appendStudent(text string) {
	c.turns = append(c.turns, StudentTurn{Text: text})
	if c.log != nil {
		c.logSeq++
		_ = c.log.AppendTurn(context.Background(), chatlog.TurnRecord{
			SessionID: c.sessionID,
			Seq:       c.logSeq,
			Role:      "student",
			Text:      text,
		})
	}
}

func (c *Controller) appendTutor(t TutorTurn) {
	c.turns = append(c.turns, t)
	if c.log != nil {
		c.logSeq++
		rec := chatlog.TurnRecord{
			SessionID:  c.sessionID,
			Seq:        c.logSeq,
			Role:       "tutor",
			Text:       t.Text,
			Action:     t.Action,
			Confidence: string(t.Confidence),
			Rationale:  t.Rationale,
		}
		if t.Graded != nil {
			rec.Graded = true
			rec.Correct = t.Graded.Correct
			rec.Expected = t.Graded.Expected
			rec.Skill = t.Graded.Skill
		}
		_ = c.log.AppendTurn(context.Background(), rec)
	}
}

func (c *Controller) logSessionStart() {
	if c.log != nil {
		_ = c.log.BeginSession(context.Background(), c.sessionID)
	}
}

// Message accessors used by the rendering layer for request echo.

// IsReset reports whether the exchange is a reset.
func (ex Exchange) IsReset() bool { return ex.reset }

// IsStart reports whether the exchange is the initial start.
func (ex Exchange) IsStart() bool { return ex.start }
