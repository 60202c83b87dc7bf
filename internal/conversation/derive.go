package conversation

import "github.com/abhisek/dsatutor/internal/tutor"

// Display texts keyed by response action tag. The displayed text is a
// pure function of the tag; every other field is copied through from
// the result's UI payload.
var displayTexts = map[string]string{
	tutor.TagOfferDiagnostic:    "Before we jump into DSA, want to take a quick diagnostic so I can tailor your path?",
	tutor.TagAskQuestion:        "Here's a question for you.",
	tutor.TagReviewPrerequisite: "Let's shore up a prerequisite before we move on.",
	tutor.TagAdvance:            "Looks good. Advancing to the next concept.",
	tutor.TagAnswerContent:      "Here's what I can tell you about that.",
}

// genericContinuation is used for unrecognized action tags.
const genericContinuation = "Alright, let's keep going."

// DeriveTutorTurn builds a tutor turn from a normalized service
// result.
func DeriveTutorTurn(res *tutor.Result) TutorTurn {
	text, ok := displayTexts[res.Action]
	if !ok {
		text = genericContinuation
	}

	t := TutorTurn{
		Text:       text,
		Action:     res.Action,
		Confidence: parseConfidence(res.Confidence),
		Graded:     res.Graded,
	}
	if res.UI != nil {
		t.Rationale = res.UI.Rationale
		t.Options = res.UI.Options
		t.Question = res.UI.Question
	}
	return t
}

// parseConfidence maps the wire confidence onto the known levels.
// Anything else is treated as absent.
func parseConfidence(s string) Confidence {
	switch Confidence(s) {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return Confidence(s)
	}
	return ""
}
