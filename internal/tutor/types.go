package tutor

// Request action tags accepted by the ingest endpoint.
const (
	ActionStart       = "start"
	ActionContinue    = "continue"
	ActionAnswer      = "answer"
	ActionContentOnly = "content_only"
)

// Response action tags declared by the service. Unrecognized tags are
// passed through and rendered as a generic continuation.
const (
	TagOfferDiagnostic    = "OFFER_DIAGNOSTIC"
	TagAskQuestion        = "ASK_QUESTION"
	TagReviewPrerequisite = "REVIEW_PREREQUISITE"
	TagAdvance            = "ADVANCE"
	TagAnswerContent      = "ANSWER_CONTENT"
)

// IngestRequest is the body of POST /session/ingest.
type IngestRequest struct {
	SessionID  string `json:"session_id"`
	Action     string `json:"action"`
	Message    string `json:"message,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
	Answer     string `json:"answer,omitempty"`
}

// Question is a multiple-choice prompt awaiting a student answer.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices,omitempty"`
}

// UIPayload carries the display data attached to a result.
type UIPayload struct {
	Rationale string    `json:"rationale,omitempty"`
	Question  *Question `json:"question,omitempty"`
	Options   []string  `json:"options,omitempty"`
}

// Graded is the service's correctness verdict for a submitted answer.
type Graded struct {
	Correct  bool   `json:"correct"`
	Skill    string `json:"skill"`
	Expected string `json:"expected"`
}

// Result is the normalized response shape shared by the ingest and
// next-step endpoints. UI is never nil after normalization.
type Result struct {
	Action     string     `json:"action,omitempty"`
	NextNode   string     `json:"next_node,omitempty"`
	FromNode   string     `json:"from_node,omitempty"`
	Confidence string     `json:"confidence,omitempty"`
	UI         *UIPayload `json:"ui,omitempty"`
	Graded     *Graded    `json:"graded,omitempty"`
}
